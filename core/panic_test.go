package core

import (
	"errors"
	"strings"
	"testing"
)

func TestGuardNoPanic(t *testing.T) {
	ran := false
	if err := Guard(func() { ran = true }); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
	if !ran {
		t.Error("Expected fn to run")
	}
}

func TestGuardConvertsPanic(t *testing.T) {
	err := Guard(func() { panic("boom") })

	var pe *PanicError
	if !errors.As(err, &pe) {
		t.Fatalf("Expected *PanicError, got %T", err)
	}
	if pe.Value != "boom" {
		t.Errorf("Expected value boom, got %v", pe.Value)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected message to contain panic value, got %q", err.Error())
	}
	if len(pe.Stack) == 0 {
		t.Error("Expected captured stack")
	}
}

func TestPanicErrorUnwrapsErrorValues(t *testing.T) {
	sentinel := errors.New("sentinel")
	err := Guard(func() { panic(sentinel) })

	if !errors.Is(err, sentinel) {
		t.Errorf("Expected errors.Is to reach the panic value")
	}
}

func TestRecoverKeepsReturnedError(t *testing.T) {
	want := errors.New("plain")
	fn := func() (err error) {
		defer Recover(&err)
		return want
	}
	if err := fn(); err != want {
		t.Errorf("Expected returned error preserved, got %v", err)
	}
}

type fakeRestorer struct{ closed int }

func (f *fakeRestorer) Close(bool) error {
	f.closed++
	return nil
}

func TestSetCrashTerminal(t *testing.T) {
	r := &fakeRestorer{}
	SetCrashTerminal(r)
	defer SetCrashTerminal(nil)

	crashMu.Lock()
	got := crashTerminal
	crashMu.Unlock()
	if got != r {
		t.Error("Expected registered restorer")
	}
}
