// @lixen: #focus{sys[term,io,output]}
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	// ErrNotTerminal is returned by Open when stdin is not a TTY
	ErrNotTerminal = errors.New("stdin is not a terminal")
	// ErrClosed is returned by writes after Close
	ErrClosed = errors.New("surface closed")
)

// closeNotice is printed by Close(true) on the primary screen
const closeNotice = "[Process closed]\n"

// Surface owns the terminal for the lifetime of the process
// One process, one surface: all I/O goes straight to the tty
type Surface struct {
	inFd   int
	out    io.Writer
	sizeFn func() (int, int, error)
	log    *zap.Logger
	mode   ColorMode

	mu     sync.Mutex
	saved  *term.State
	width  int
	height int
	opened bool
	closed bool
	paused bool

	// epoch increments on every full clear; painted state from an older epoch is gone
	epoch atomic.Uint64

	resize *resizeWatcher
}

// Option configures a Surface
type Option func(*Surface)

// WithColorMode overrides environment color detection
func WithColorMode(m ColorMode) Option {
	return func(s *Surface) {
		s.mode = m
	}
}

// WithLogger sets the logger for resize and teardown diagnostics
func WithLogger(l *zap.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.log = l
		}
	}
}

func newSurface(out io.Writer, sizeFn func() (int, int, error), opts ...Option) *Surface {
	s := &Surface{
		inFd:   -1,
		out:    out,
		sizeFn: sizeFn,
		log:    zap.NewNop(),
		mode:   DetectColorMode(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open switches the terminal to the alternate screen, hides the cursor, clears it and
// disables echo and canonical input. Prior attributes are saved for Close.
func Open(opts ...Option) (*Surface, error) {
	outFd := int(os.Stdout.Fd())
	s := newSurface(os.Stdout, func() (int, int, error) { return winsize(outFd) }, opts...)
	s.inFd = int(os.Stdin.Fd())

	if !term.IsTerminal(s.inFd) {
		return nil, ErrNotTerminal
	}

	if err := s.acquire(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.opened = true
	s.mu.Unlock()

	s.resize = newResizeWatcher(s.handleResize)
	s.resize.start()

	s.log.Info("terminal opened",
		zap.Int("width", s.width),
		zap.Int("height", s.height),
		zap.Stringer("color_mode", s.mode))
	return s, nil
}

// acquire saves attributes, enters no-echo mode and the alternate screen
// Any failure restores what was already changed
func (s *Surface) acquire() error {
	state, err := term.GetState(s.inFd)
	if err != nil {
		return fmt.Errorf("save terminal state: %w", err)
	}
	if err := setNoEcho(s.inFd); err != nil {
		term.Restore(s.inFd, state)
		return fmt.Errorf("disable echo: %w", err)
	}

	w, h, err := s.sizeFn()
	if err != nil {
		term.Restore(s.inFd, state)
		return fmt.Errorf("read terminal size: %w", err)
	}

	s.mu.Lock()
	s.saved = state
	s.width, s.height = clampDim(w), clampDim(h)
	err = s.writeLocked(csiAltScreenEnter, csiCursorHide, csiClear)
	s.mu.Unlock()
	s.epoch.Add(1)

	if err != nil {
		return multierr.Append(fmt.Errorf("enter alternate screen: %w", err), s.release(false))
	}
	return nil
}

// release restores saved attributes and the primary screen
func (s *Surface) release(verbose bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.saved != nil {
		if rerr := term.Restore(s.inFd, s.saved); rerr != nil {
			err = multierr.Append(err, fmt.Errorf("restore terminal state: %w", rerr))
		}
		s.saved = nil
	}
	if werr := s.writeLocked(csiSGR0, csiAltScreenExit, csiCursorShow); werr != nil {
		err = multierr.Append(err, fmt.Errorf("leave alternate screen: %w", werr))
	}
	if s.inFd >= 0 {
		if ferr := NewInput(s.inFd, nil).Flush(); ferr != nil {
			err = multierr.Append(err, fmt.Errorf("flush input: %w", ferr))
		}
	}
	if verbose {
		if _, werr := io.WriteString(s.out, closeNotice); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	return err
}

// Close restores the terminal. Safe to call multiple times
func (s *Surface) Close(verbose bool) error {
	s.mu.Lock()
	if !s.opened || s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	paused := s.paused
	s.mu.Unlock()

	if s.resize != nil {
		s.resize.stop()
	}

	var err error
	if paused {
		// Attributes already restored by Pause
		if verbose {
			_, err = io.WriteString(s.out, closeNotice)
		}
	} else {
		err = s.release(verbose)
	}

	if err != nil {
		s.log.Warn("terminal restore incomplete", zap.Error(err))
	} else {
		s.log.Info("terminal closed")
	}
	return err
}

// Pause hands the terminal back, e.g. to a child process, keeping buffer state
func (s *Surface) Pause() error {
	s.mu.Lock()
	if !s.opened || s.closed || s.paused {
		s.mu.Unlock()
		return nil
	}
	s.paused = true
	s.mu.Unlock()
	return s.release(false)
}

// Resume reacquires the alternate screen and no-echo mode after Pause
func (s *Surface) Resume() error {
	s.mu.Lock()
	if !s.opened || s.closed || !s.paused {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.acquire(); err != nil {
		return err
	}

	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
	return nil
}

// handleResize recomputes geometry from the OS and forces a full clear
func (s *Surface) handleResize() {
	w, h, err := s.sizeFn()

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.opened || s.closed || s.paused {
		return
	}
	if err != nil {
		s.log.Warn("terminal size unavailable, keeping previous geometry", zap.Error(err))
		return
	}

	s.width, s.height = clampDim(w), clampDim(h)
	if werr := s.writeLocked(csiClear); werr != nil {
		s.log.Warn("clear after resize failed", zap.Error(werr))
	}
	s.epoch.Add(1)

	s.log.Debug("terminal resized", zap.Int("width", s.width), zap.Int("height", s.height))
}

// Clear erases the whole screen
func (s *Surface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	err := s.writeLocked(csiClear)
	s.epoch.Add(1)
	return err
}

// Write sends raw bytes to the terminal
// Output is dropped while paused; Resume clears and bumps the epoch so nothing is lost
func (s *Surface) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	if s.paused {
		return len(p), nil
	}
	return s.out.Write(p)
}

func (s *Surface) writeLocked(seqs ...[]byte) error {
	for _, seq := range seqs {
		if _, err := s.out.Write(seq); err != nil {
			return err
		}
	}
	return nil
}

// Size returns current terminal dimensions
func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

// Epoch returns the clear counter
func (s *Surface) Epoch() uint64 {
	return s.epoch.Load()
}

// ColorMode returns the color capability in use
func (s *Surface) ColorMode() ColorMode {
	return s.mode
}

// HasRGB reports whether 24-bit color sequences are emitted
func (s *Surface) HasRGB() bool {
	return s.mode == ColorModeTrueColor
}

// Input returns an input source reading the surface's tty
func (s *Surface) Input() *Input {
	return NewInput(s.inFd, s)
}

func clampDim(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
