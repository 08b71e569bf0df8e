package core

import (
	"fmt"
	"os"
	"runtime/debug"
	"sync"

	"github.com/lixenwraith/sticks/terminal"
)

// Restorer puts the terminal back the way it was found
type Restorer interface {
	Close(verbose bool) error
}

var (
	crashMu       sync.Mutex
	crashTerminal Restorer
)

// SetCrashTerminal registers the surface HandleCrash restores; nil unregisters
func SetCrashTerminal(r Restorer) {
	crashMu.Lock()
	defer crashMu.Unlock()
	crashTerminal = r
}

// HandleCrash is the unified panic handler that resets the terminal and prints the stack trace
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	t := crashTerminal
	crashMu.Unlock()

	// Restore terminal to sane state immediately
	if t == nil || t.Close(false) != nil {
		terminal.EmergencyReset(os.Stdout)
	}

	os.Stdout.Sync()
	fmt.Fprintf(os.Stderr, "\r\n\x1b[31mCRASH DETECTED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Stderr.Sync()

	os.Exit(1)
}

// Go runs a function in a new goroutine with panic recovery.
// Use this instead of the 'go' keyword to ensure terminal cleanup on crash.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
