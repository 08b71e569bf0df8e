// @focus: #terminal { ansi }
package terminal

import (
	"io"
)

// Pre-allocated ANSI sequence fragments (avoid allocations during render)
var (
	// CSI sequences
	csi      = []byte("\x1b[")
	csiClear = []byte("\x1b[2J")
	csiRIS   = []byte("\x1bc") // Reset to Initial State (emergency)
	csiSGR0  = []byte("\x1b[0m")

	// Cursor control
	csiCursorHide = []byte("\x1b[?25l")
	csiCursorShow = []byte("\x1b[?25h")

	// Screen modes
	csiAltScreenEnter = []byte("\x1b[?1049h")
	csiAltScreenExit  = []byte("\x1b[?1049l")

	// Color prefixes
	csiFg256 = []byte("\x1b[38;5;") // followed by N;m
	csiBg256 = []byte("\x1b[48;5;") // followed by N;m
	csiFgRGB = []byte("\x1b[38;2;") // followed by R;G;B;m
	csiBgRGB = []byte("\x1b[48;2;") // followed by R;G;B;m
)

// ByteWriter is satisfied by *bufio.Writer and *bytes.Buffer
type ByteWriter interface {
	io.Writer
	io.ByteWriter
}

// writeInt writes an integer without allocation
// Optimized for terminal values (0-255 common, 0-999 typical max)
func writeInt(w ByteWriter, n int) {
	if n < 0 {
		n = 0
	}
	if n < 10 {
		w.WriteByte(byte(n) + '0')
		return
	}
	if n < 100 {
		w.WriteByte(byte(n/10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	if n < 1000 {
		w.WriteByte(byte(n/100) + '0')
		w.WriteByte(byte(n/10%10) + '0')
		w.WriteByte(byte(n%10) + '0')
		return
	}
	// Fallback for >999 (rare)
	var buf [20]byte
	i := len(buf) - 1
	for n > 0 {
		buf[i] = byte(n%10) + '0'
		n /= 10
		i--
	}
	w.Write(buf[i+1:])
}

// WriteCursorPos writes cursor positioning sequence (0-indexed input)
func WriteCursorPos(w ByteWriter, x, y int) {
	w.Write(csi)
	writeInt(w, y+1)
	w.WriteByte(';')
	writeInt(w, x+1)
	w.WriteByte('H')
}

// WriteReset writes SGR 0
func WriteReset(w ByteWriter) {
	w.Write(csiSGR0)
}

// WriteFgRGB writes a 24-bit foreground sequence
func WriteFgRGB(w ByteWriter, r, g, b uint8) {
	w.Write(csiFgRGB)
	writeRGB(w, r, g, b)
}

// WriteBgRGB writes a 24-bit background sequence
func WriteBgRGB(w ByteWriter, r, g, b uint8) {
	w.Write(csiBgRGB)
	writeRGB(w, r, g, b)
}

// WriteFg256 writes an 8-bit indexed foreground sequence
func WriteFg256(w ByteWriter, n uint8) {
	w.Write(csiFg256)
	writeInt(w, int(n))
	w.WriteByte('m')
}

// WriteBg256 writes an 8-bit indexed background sequence
func WriteBg256(w ByteWriter, n uint8) {
	w.Write(csiBg256)
	writeInt(w, int(n))
	w.WriteByte('m')
}

func writeRGB(w ByteWriter, r, g, b uint8) {
	writeInt(w, int(r))
	w.WriteByte(';')
	writeInt(w, int(g))
	w.WriteByte(';')
	writeInt(w, int(b))
	w.WriteByte('m')
}
