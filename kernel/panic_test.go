package kernel

import (
	"testing"

	"github.com/nyxkernel/memcore/kernel/cpu"
	"github.com/nyxkernel/memcore/kernel/hal"
)

func TestPanic(t *testing.T) {
	defer func() {
		cpuHaltFn = cpu.Halt
	}()

	var cpuHaltCalled bool
	cpuHaltFn = func() {
		cpuHaltCalled = true
	}

	t.Run("with error", func(t *testing.T) {
		cpuHaltCalled = false
		fb := mockConsole()
		err := &Error{Module: "test", Message: "panic test"}

		Panic(err)

		exp := "\n-----------------------------------\n[test] unrecoverable error: panic test\n*** kernel panic: system halted ***\n-----------------------------------"

		if got := fb.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
	})

	t.Run("with wrapped cause", func(t *testing.T) {
		cpuHaltCalled = false
		fb := mockConsole()
		cause := &Error{Module: "pfa", Message: "entry metadata pool exhausted"}
		err := &Error{Module: "test", Message: "panic test", Cause: cause}

		Panic(err)

		exp := "\n-----------------------------------\n[test] unrecoverable error: panic test\n  caused by: entry metadata pool exhausted\n*** kernel panic: system halted ***\n-----------------------------------"

		if got := fb.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
	})

	t.Run("without error", func(t *testing.T) {
		cpuHaltCalled = false
		fb := mockConsole()

		Panic(nil)

		exp := "\n-----------------------------------\n*** kernel panic: system halted ***\n-----------------------------------"

		if got := fb.String(); got != exp {
			t.Fatalf("expected to get:\n%q\ngot:\n%q", exp, got)
		}

		if !cpuHaltCalled {
			t.Fatal("expected cpu.Halt() to be called by Panic")
		}
	})
}

func mockConsole() *hal.BufferConsole {
	fb := &hal.BufferConsole{}
	hal.ActiveTerminal = fb
	return fb
}
