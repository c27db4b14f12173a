package vmm

// Error is the VMM's flat error enum. PagingError wraps whatever error a
// ptd.Driver returned. The driver interface (kernel/mem/ptd.Driver) is
// spec'd as interface-only — an out-of-tree architecture port supplies the
// implementation — so inner is the plain error interface rather than the
// concrete ptd.Error: a real driver is free to return an ordinarily
// wrapped error (fmt.Errorf-style) instead of a bare ptd.Error value, and
// WrapPaging must not assume otherwise.
type Error struct {
	kind Kind
	inner error
}

// Kind enumerates the VMM's failure taxonomy.
type Kind int

const (
	NotAligned Kind = iota + 1
	InvalidSize
	InvalidAddress
	AllocAddressFailed
	FreeAddressFailed
	AddressNotAvailable
	MapAddressFailed
	InternalError
	EntryPoolRunOut
	PagingErrorKind
)

func newError(k Kind) *Error { return &Error{kind: k} }

// WrapPaging wraps a page-table driver error as a VMM PagingError. inner
// may be any error a Driver implementation returns, not just the concrete
// ptd.Error the in-tree mock happens to use.
func WrapPaging(inner error) *Error { return &Error{kind: PagingErrorKind, inner: inner} }

// VMKind reports the error's taxonomy entry.
func (e *Error) VMKind() Kind { return e.kind }

// Unwrap exposes the wrapped driver error for errors.As/errors.Is callers.
func (e *Error) Unwrap() error {
	if e.kind != PagingErrorKind {
		return nil
	}
	return e.inner
}

func (e *Error) Error() string {
	switch e.kind {
	case NotAligned:
		return "vmm: address or size not aligned"
	case InvalidSize:
		return "vmm: invalid size"
	case InvalidAddress:
		return "vmm: invalid address"
	case AllocAddressFailed:
		return "vmm: alloc address failed"
	case FreeAddressFailed:
		return "vmm: free address failed"
	case AddressNotAvailable:
		return "vmm: address not available"
	case MapAddressFailed:
		return "vmm: map address failed"
	case InternalError:
		return "vmm: internal error"
	case EntryPoolRunOut:
		return "vmm: metadata entry pool run out"
	case PagingErrorKind:
		return "vmm: paging error: " + e.inner.Error()
	default:
		return "vmm: unknown error"
	}
}

var (
	ErrNotAligned = newError(NotAligned)
	ErrInvalidSize = newError(InvalidSize)
	ErrInvalidAddress = newError(InvalidAddress)
	ErrAllocAddressFailed = newError(AllocAddressFailed)
	ErrFreeAddressFailed = newError(FreeAddressFailed)
	ErrAddressNotAvailable = newError(AddressNotAvailable)
	ErrMapAddressFailed = newError(MapAddressFailed)
	ErrInternalError = newError(InternalError)
	ErrEntryPoolRunOut = newError(EntryPoolRunOut)
)
