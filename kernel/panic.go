package kernel

import (
	"errors"

	"github.com/nyxkernel/memcore/kernel/cpu"
	"github.com/nyxkernel/memcore/kernel/kfmt/early"
)

var (
	// cpuHaltFn is mocked by tests and is automatically inlined by the compiler.
	cpuHaltFn = cpu.Halt

	errRuntimePanic = &Error{Module: "rt", Message: "unknown cause"}
)

// Panic outputs the supplied error (if not nil) to the console, walking any
// wrapped Cause (a pfa/vmm/ptd taxonomy error reported through
// kernel.Error.Cause) down to its root so a page-table or allocator failure
// doesn't get flattened to one opaque line, then halts the CPU. Calls to
// Panic never return. Panic also works as a redirection target for calls to
// panic() (resolved via runtime.gopanic)
//go:redirect-from runtime.gopanic
func Panic(e interface{}) {
	var err *Error

	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errRuntimePanic.Message = t
		errRuntimePanic.Cause = nil
		err = errRuntimePanic
	case error:
		errRuntimePanic.Message = t.Error()
		errRuntimePanic.Cause = errors.Unwrap(t)
		err = errRuntimePanic
	}

	early.Printf("\n-----------------------------------\n")
	if err != nil {
		early.Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
		for cause := err.Unwrap(); cause != nil; cause = errors.Unwrap(cause) {
			early.Printf("  caused by: %s\n", cause.Error())
		}
	}
	early.Printf("*** kernel panic: system halted ***")
	early.Printf("\n-----------------------------------")

	cpuHaltFn()
}
