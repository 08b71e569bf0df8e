//go:build unix

package terminal

import (
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"syscall"
)

// resizeWatcher turns SIGWINCH into calls to handler, one at a time
// Signals arriving while handler runs collapse into a single follow-up call
type resizeWatcher struct {
	handler  func()
	signals  chan os.Signal
	quit     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
	handled  atomic.Uint64
}

func newResizeWatcher(handler func()) *resizeWatcher {
	return &resizeWatcher{
		handler: handler,
		signals: make(chan os.Signal, 1),
		quit:    make(chan struct{}),
		exited:  make(chan struct{}),
	}
}

func (r *resizeWatcher) start() {
	signal.Notify(r.signals, syscall.SIGWINCH)
	go r.run()
}

// stop unsubscribes and waits for an in-flight handler to finish
func (r *resizeWatcher) stop() {
	r.stopOnce.Do(func() {
		signal.Stop(r.signals)
		close(r.quit)
		<-r.exited
	})
}

func (r *resizeWatcher) run() {
	defer close(r.exited)

	// Geometry code runs here, outside any game recovery
	defer func() {
		if rec := recover(); rec != nil {
			EmergencyReset(os.Stdout)
			fmt.Fprintf(os.Stderr, "\r\n\x1b[31mRESIZE HANDLER CRASHED: %v\x1b[0m\r\n", rec)
			fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
			os.Exit(1)
		}
	}()

	for {
		select {
		case <-r.quit:
			return
		case <-r.signals:
			r.handler()
			r.handled.Add(1)
		}
	}
}
