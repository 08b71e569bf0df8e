//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package terminal

import "golang.org/x/sys/unix"

const (
	ioctlReadTermios  = unix.TIOCGETA
	ioctlWriteTermios = unix.TIOCSETA
)

// flushInput has no portable ioctl here, Input.Flush falls back to draining
func flushInput(fd int) error {
	return errNoFlush
}
