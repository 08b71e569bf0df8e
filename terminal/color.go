package terminal

import (
	"fmt"
	"os"
	"strings"
)

// ColorMode indicates terminal color capability
type ColorMode uint8

const (
	ColorMode256       ColorMode = iota // xterm-256 palette
	ColorModeTrueColor                  // 24-bit RGB
)

// String returns the config spelling of the mode
func (m ColorMode) String() string {
	if m == ColorModeTrueColor {
		return "truecolor"
	}
	return "256"
}

// ParseColorMode resolves a config or flag value; "auto" and "" detect from the environment
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return DetectColorMode(), nil
	case "truecolor", "true", "24bit", "rgb":
		return ColorModeTrueColor, nil
	case "256", "indexed":
		return ColorMode256, nil
	default:
		return ColorMode256, fmt.Errorf("unknown color mode %q", s)
	}
}

// trueColorHints lists env values that advertise 24-bit support; an empty
// want matches any non-empty value
var trueColorHints = []struct {
	env, want string
}{
	{"COLORTERM", "truecolor"},
	{"COLORTERM", "24bit"},
	{"TERM_PROGRAM", "iTerm.app"},
	{"TERM_PROGRAM", "WezTerm"},
	{"KITTY_WINDOW_ID", ""},
	{"ALACRITTY_WINDOW_ID", ""},
}

// DetectColorMode picks truecolor when the environment advertises it, 256 otherwise
func DetectColorMode() ColorMode {
	return detectColorMode(os.Getenv)
}

func detectColorMode(getenv func(string) string) ColorMode {
	for _, h := range trueColorHints {
		v := getenv(h.env)
		if v != "" && (h.want == "" || v == h.want) {
			return ColorModeTrueColor
		}
	}
	if t := getenv("TERM"); strings.HasSuffix(t, "-direct") || strings.Contains(t, "truecolor") {
		return ColorModeTrueColor
	}
	return ColorMode256
}
