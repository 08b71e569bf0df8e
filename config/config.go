package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration, one section per concern
type Config struct {
	Loop     LoopConfig     `toml:"loop" yaml:"loop"`
	Render   RenderConfig   `toml:"render" yaml:"render"`
	Terminal TerminalConfig `toml:"terminal" yaml:"terminal"`
	Debug    DebugConfig    `toml:"debug" yaml:"debug"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

// LoopConfig sets the tick rates of both loops and the key poll timeout
type LoopConfig struct {
	VariableRate float64 `toml:"variable_rate" yaml:"variable_rate"` // ticks per second
	FixedRate    float64 `toml:"fixed_rate" yaml:"fixed_rate"`       // ticks per second
	InputTimeout float64 `toml:"input_timeout" yaml:"input_timeout"` // seconds, 0 = non-blocking
}

// RenderConfig controls the tick refresh and stale-cell policy
type RenderConfig struct {
	AutoRefresh    bool   `toml:"auto_refresh" yaml:"auto_refresh"`
	ClearUnpainted bool   `toml:"clear_unpainted" yaml:"clear_unpainted"`
	FillChar       string `toml:"fill_char" yaml:"fill_char"`
}

// TerminalConfig selects the color depth and close behavior of the surface
type TerminalConfig struct {
	ColorMode    string `toml:"color_mode" yaml:"color_mode"` // "auto", "truecolor" or "256"
	VerboseClose bool   `toml:"verbose_close" yaml:"verbose_close"`
}

// DebugConfig configures the on-screen log overlay
type DebugConfig struct {
	ToggleKey int `toml:"toggle_key" yaml:"toggle_key"`
	Lines     int `toml:"lines" yaml:"lines"`
}

// LoggingConfig configures the zap file logger
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "json" or "console"
	File   string `toml:"file" yaml:"file"`     // empty disables logging
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Loop: LoopConfig{
			VariableRate: 30,
			FixedRate:    20,
		},
		Render: RenderConfig{
			AutoRefresh:    true,
			ClearUnpainted: true,
			FillChar:       " ",
		},
		Terminal: TerminalConfig{
			ColorMode: "auto",
		},
		Debug: DebugConfig{
			ToggleKey: '`',
			Lines:     5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads a TOML or YAML file, chosen by extension, over the defaults
// Unknown keys are rejected
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, fmt.Errorf("parse config %s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}

	return cfg, nil
}

// ApplyEnv overrides values from STICKS_* environment variables
// Malformed values are ignored
func (c *Config) ApplyEnv() {
	if v := os.Getenv("STICKS_COLOR_MODE"); v != "" {
		c.Terminal.ColorMode = v
	}
	if v := os.Getenv("STICKS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("STICKS_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("STICKS_CLEAR_UNPAINTED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Render.ClearUnpainted = b
		}
	}
}

// Validate reports every invalid field at once
func (c Config) Validate() error {
	var err error
	if c.Loop.VariableRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("loop.variable_rate must be positive, got %v", c.Loop.VariableRate))
	}
	if c.Loop.FixedRate <= 0 {
		err = multierr.Append(err, fmt.Errorf("loop.fixed_rate must be positive, got %v", c.Loop.FixedRate))
	}
	if c.Loop.InputTimeout < 0 {
		err = multierr.Append(err, fmt.Errorf("loop.input_timeout must not be negative, got %v", c.Loop.InputTimeout))
	}
	if utf8.RuneCountInString(c.Render.FillChar) > 1 {
		err = multierr.Append(err, fmt.Errorf("render.fill_char must be a single character, got %q", c.Render.FillChar))
	}
	switch strings.ToLower(c.Terminal.ColorMode) {
	case "", "auto", "truecolor", "true", "24bit", "rgb", "256", "indexed":
	default:
		err = multierr.Append(err, fmt.Errorf("terminal.color_mode: unknown mode %q", c.Terminal.ColorMode))
	}
	if c.Debug.ToggleKey < 0 || c.Debug.ToggleKey > 255 {
		err = multierr.Append(err, fmt.Errorf("debug.toggle_key must be a byte, got %d", c.Debug.ToggleKey))
	}
	if c.Debug.Lines < 0 {
		err = multierr.Append(err, fmt.Errorf("debug.lines must not be negative, got %d", c.Debug.Lines))
	}
	var lvl zapcore.Level
	if lerr := lvl.UnmarshalText([]byte(c.Logging.Level)); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging.level: %w", lerr))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		err = multierr.Append(err, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return err
}

// VariableInterval is the target period of the variable loop
func (l LoopConfig) VariableInterval() time.Duration {
	return rateInterval(l.VariableRate)
}

// FixedInterval is the target period of the fixed loop
func (l LoopConfig) FixedInterval() time.Duration {
	return rateInterval(l.FixedRate)
}

// PollTimeout is the input wait per variable tick
func (l LoopConfig) PollTimeout() time.Duration {
	if l.InputTimeout <= 0 {
		return 0
	}
	return time.Duration(l.InputTimeout * float64(time.Second))
}

// Fill returns the stale-cell fill rune, space when unset
func (r RenderConfig) Fill() rune {
	if r.FillChar == "" {
		return ' '
	}
	ch, _ := utf8.DecodeRuneInString(r.FillChar)
	return ch
}

func rateInterval(rate float64) time.Duration {
	if rate <= 0 {
		return time.Second
	}
	return time.Duration(float64(time.Second) / rate)
}
