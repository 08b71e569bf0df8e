// @focus: #sys { term }
// Package terminal provides direct ANSI terminal control for a single-process display surface.
//
// Features:
//   - Alternate screen, hidden cursor, no-echo/non-canonical input with saved attribute restore
//   - True color (24-bit) and 256-color palette sequence writers
//   - SIGWINCH resize detection with a clear epoch consumers use to invalidate painted state
//   - Single-key input polling with timeout and stale keystroke flushing
//   - Clean terminal restoration on exit/panic
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
