package terminal

import (
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/sys/unix"
)

const (
	// NoKey is returned by Poll when no byte arrived before the timeout
	NoKey = -1
	// KeyRedraw (form feed, Ctrl-L) clears the surface as a side effect of being read
	KeyRedraw = 12
)

// Clearer is notified when the redraw key is read
type Clearer interface {
	Clear() error
}

// Input reads single bytes from a tty without blocking past a timeout
// Only the most recent keypress matters: everything buffered behind it is discarded
type Input struct {
	fd      int
	clearer Clearer
	buf     [1]byte
}

// NewInput creates an input source for fd; c may be nil
func NewInput(fd int, c Clearer) *Input {
	return &Input{fd: fd, clearer: c}
}

// Poll waits up to timeout for one byte and returns it, or NoKey on timeout
func (in *Input) Poll(timeout time.Duration) (int, error) {
	ready, err := pollReadable(in.fd, timeoutMillis(timeout))
	if err != nil {
		return NoKey, fmt.Errorf("poll input: %w", err)
	}
	if !ready {
		return NoKey, nil
	}

	n, err := unix.Read(in.fd, in.buf[:])
	if err != nil {
		if err == unix.EINTR || err == unix.EAGAIN {
			return NoKey, nil
		}
		return NoKey, fmt.Errorf("read input: %w", err)
	}
	if n == 0 {
		return NoKey, fmt.Errorf("read input: %w", io.EOF)
	}

	key := int(in.buf[0])
	if err := in.Flush(); err != nil {
		return key, fmt.Errorf("flush input: %w", err)
	}

	if key == KeyRedraw && in.clearer != nil {
		if err := in.clearer.Clear(); err != nil && !errors.Is(err, ErrClosed) {
			return key, fmt.Errorf("redraw: %w", err)
		}
	}
	return key, nil
}

// Flush discards any buffered but unread input
func (in *Input) Flush() error {
	if err := flushInput(in.fd); err == nil {
		return nil
	}
	// Not a tty or no flush ioctl on this platform
	return drainInput(in.fd)
}

// pollReadable reports whether fd has data within ms milliseconds; EINTR counts as timeout
func pollReadable(fd, ms int) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, ms)
	if err != nil {
		if err == unix.EINTR {
			return false, nil
		}
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if fds[0].Revents&unix.POLLIN != 0 {
		return true, nil
	}
	if fds[0].Revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
		return false, io.EOF
	}
	return false, nil
}

func drainInput(fd int) error {
	var buf [256]byte
	for {
		ready, err := pollReadable(fd, 0)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if !ready {
			return nil
		}
		n, err := unix.Read(fd, buf[:])
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err == unix.EAGAIN {
				return nil
			}
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

// timeoutMillis converts a timeout for poll(2); negative waits are not allowed
func timeoutMillis(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	ms := int(d / time.Millisecond)
	if ms == 0 {
		ms = 1
	}
	return ms
}
