// Package ptd declares the page-table driver boundary: the
// architecture-specific component that installs and tears down
// virtual-to-physical translations. This component is interface only:
// the actual translation walk (the per-arch page-table format, TLB
// shootdown IPIs) lives below this module's boundary, the same way
// kernel/cpu declares bodiless extern functions that an assembly stub
// links against.
package ptd

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// Permission is the four-bit access-control vector carried by every
// mapping.
type Permission struct {
	Readable bool
	Writable bool
	Executable bool
	UserAccessible bool
}

// Data returns the permission quad for a writable, non-executable,
// kernel-private data mapping.
func Data() Permission { return Permission{Readable: true, Writable: true} }

// ReadOnlyData returns the permission quad for a read-only, non-executable
// data mapping (e.g..rodata).
func ReadOnlyData() Permission { return Permission{Readable: true} }

// Option is a bitmask of mapping behavior flags.
type Option uint32

const (
	KERNEL Option = 1 << iota
	USER
	ALLOC
	IOMap
	DeviceMemory
	WIRED
	AllowHuge
	NoWait
	CRITICAL
	DoNotFreePhysicalAddress
	STACK
	AllocArea
)

// Validate rejects combinations the caller flags as contradictory: an IO
// mapping with executable permission, a kernel mapping marked
// user-accessible, or a device-memory mapping that allows huge pages over
// a size that isn't huge-page aligned (the driver has no small-page
// fallback to offer a device-backed range that can't start or end on a
// huge-page boundary).
func Validate(perm Permission, opt Option, size addr.MSize) error {
	if opt&IOMap != 0 && perm.Executable {
		return ErrConflictingFlags
	}
	if opt&KERNEL != 0 && perm.UserAccessible {
		return ErrConflictingFlags
	}
	if opt&DeviceMemory != 0 && opt&AllowHuge != 0 && uint64(size)%uint64(addr.HugePageSize) != 0 {
		return ErrConflictingFlags
	}
	return nil
}

// Driver is the architecture-specific translation installer. Every
// implementation assumes the caller already holds the owning address
// space's lock.
type Driver interface {
	// Associate installs translations for [va, va+size) to the physical
	// range starting at pa. If option has AllowHuge set and alignment
	// and size permit, the driver may install a single large-page
	// entry. Associate must not silently reuse an existing translation
	// that maps a different physical page; it returns ErrAlreadyMapped
	// instead.
	Associate(pa addr.PA, va addr.VA, size addr.MSize, perm Permission, opt Option) error

	// Unassociate tears down translations over [va, va+size), splitting
	// a large page into small pages and allocating intermediate tables
	// from the supplied frame source if necessary.
	Unassociate(va addr.VA, size addr.MSize) error

	// UpdatePageCache flushes the TLB for [va, va+size).
	UpdatePageCache(va addr.VA, size addr.MSize) error

	// UpdatePageCacheAll flushes the entire TLB.
	UpdatePageCacheAll() error

	// CopySystemArea splices the kernel's top-level page-table entries
	// from src into this driver's table, for constructing a user
	// address space whose top half must mirror the kernel.
	CopySystemArea(src Driver) error

	// DestroyPageTable releases every intermediate table frame this
	// driver owns back to the frame source.
	DestroyPageTable() error

	// ActivateTable switches the CPU to this driver's constructed page
	// table root and flushes the TLB, the final step transitioning
	// execution off the loader's identity map. The architecture-specific
	// instruction this issues (mov to cr3, msr ttbr0_el1, csrw satp) is
	// outside this module's scope; only the boundary is declared here.
	ActivateTable() error
}

// FrameSource is the minimal physical-frame provider a Driver needs to
// allocate intermediate page-table frames. The pfa package
// satisfies this.
type FrameSource interface {
	Alloc(size addr.MSize, alignOrder addr.MOrder) (addr.PA, error)
	Free(pa addr.PA, size addr.MSize, isInitializing bool) error
}
