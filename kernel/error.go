package kernel

// Error describes a kernel-level fault report. All kernel errors must be
// defined as global variables that are pointers to the Error structure. This
// requirement stems from the fact that the Go allocator is not available to
// us so we cannot use errors.New.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message
	Message string

	// Cause is the domain error (pfa.Error, vmm.Error, ptd.Error) that
	// triggered this report, if any. Callers that reach for errors.As/
	// errors.Is against the original taxonomy after a kernel.Error wrap —
	// rather than only the flattened Message string — unwrap through this.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}
