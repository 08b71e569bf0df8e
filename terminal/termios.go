//go:build unix

package terminal

import (
	"errors"

	"golang.org/x/sys/unix"
)

var errNoFlush = errors.New("input flush ioctl unavailable")

// setNoEcho disables canonical mode and echo, leaving signal generation intact so Ctrl-C still interrupts
func setNoEcho(fd int) error {
	t, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return err
	}
	t.Lflag &^= unix.ECHO | unix.ICANON
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0
	return unix.IoctlSetTermios(fd, ioctlWriteTermios, t)
}

// winsize returns the terminal size for a given fd
func winsize(fd int) (int, int, error) {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}

// resetTerminalMode attempts to restore terminal to cooked mode
// Best-effort for crash recovery; errors ignored
func resetTerminalMode() {
	// Try to restore via /dev/tty (works even if stdin redirected)
	tty, err := openTTY()
	if err != nil {
		return
	}
	defer tty.Close()
	fd := int(tty.Fd())
	if t, err := unix.IoctlGetTermios(fd, ioctlReadTermios); err == nil {
		t.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
		t.Iflag |= unix.ICRNL
		unix.IoctlSetTermios(fd, ioctlWriteTermios, t)
	}
}
