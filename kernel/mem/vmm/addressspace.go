package vmm

import (
	"context"

	"github.com/nyxkernel/memcore/kernel/lock"
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/pfa"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

// AddressSpace is {lock, ordered VME list, page-table root}.
// The kernel has exactly one; a user process clones the kernel's top-level
// table via Driver.CopySystemArea when the architecture requires it.
type AddressSpace struct {
	lock lock.ClassicIRQSave

	// sharedLock is the SMM's lock (kernel/mem/smm.SMM.lock), the same
	// pointer held by every AddressSpace sharing this pools/frames pair. It
	// guards the shared arenas and the PFA themselves; as.lock only owns
	// this address space's own VME list.
	sharedLock *lock.IRQSave

	pools *Pools
	frames *pfa.PFA
	driver ptd.Driver
	windows Windows

	firstVME int32
	isKernel bool
	tableSet bool

	donator *Donator
}

// NewAddressSpace constructs an address space backed by the given metadata
// pools, physical frame allocator, and page-table driver. pools and frames
// are typically the system-wide singletons owned by the SMM; sharedLock is
// the SMM's own lock, common to every address space built against the same
// pools/frames pair.
func NewAddressSpace(pools *Pools, frames *pfa.PFA, driver ptd.Driver, windows Windows, isKernel bool, sharedLock *lock.IRQSave) *AddressSpace {
	return &AddressSpace{pools: pools, frames: frames, driver: driver, windows: windows, firstVME: nilHandle, isKernel: isKernel, sharedLock: sharedLock}
}

// SetPagingTable performs the final transition from the loader's identity
// map to this address space's constructed page table (spec §6: "the caller
// must invoke it exactly once per address space when ready to transfer
// execution"). A second call returns ErrInternalError rather than
// re-activating the table.
func (as *AddressSpace) SetPagingTable() error {
	as.lock.Lock()
	defer as.lock.Unlock()

	if as.tableSet {
		return ErrInternalError
	}
	if err := as.driver.ActivateTable(); err != nil {
		return WrapPaging(err)
	}
	as.tableSet = true
	return nil
}

// SetDonator wires the background pool-growth worker used when a
// non-critical caller exhausts a metadata pool mid-operation. Kernel boot wires this once SMM constructs the kernel address
// space's own Donator; it is nil (and retries are skipped) in tests that
// don't exercise pool exhaustion.
func (as *AddressSpace) SetDonator(d *Donator) { as.donator = d }

// retryAfterPoolExhaustion synchronously grows the metadata pools and
// retries fn once, using the documented ClassicIRQSave unlock/lock window.
// CRITICAL and NO_WAIT callers skip this and fail immediately.
func (as *AddressSpace) retryAfterPoolExhaustion(opt ptd.Option, fn func() bool) bool {
	if as.donator == nil || opt&ptd.CRITICAL != 0 || opt&ptd.NoWait != 0 {
		return false
	}
	retried := false
	// The donation path takes the shared lock itself, so it is released
	// across the window too (inner lock first, matching acquisition order).
	as.sharedLock.Unlock()
	as.lock.WithUnlockWindow(func() {
		retried = as.donator.EnsureWatermarks(context.Background()) == nil
	})
	as.sharedLock.Lock()
	if !retried {
		return false
	}
	return fn()
}

// insertSorted links a new VME handle into the address-ordered list,
// maintaining the invariant that the list is sorted by start_va and that
// no two VMEs overlap. Returns
// ErrAddressNotAvailable if h's range intersects an existing entry.
func (as *AddressSpace) insertSorted(h int32) error {
	e := &as.pools.vmes[h]

	if as.firstVME == nilHandle {
		as.firstVME = h
		e.prev, e.next = nilHandle, nilHandle
		return nil
	}

	var prev int32 = nilHandle
	cur := as.firstVME
	for cur != nilHandle {
		ce := &as.pools.vmes[cur]
		if e.startVA < ce.startVA {
			break
		}
		prev = cur
		cur = ce.next
	}

	if prev != nilHandle && as.pools.vmes[prev].endVA >= e.startVA {
		return ErrAddressNotAvailable
	}
	if cur != nilHandle && e.endVA >= as.pools.vmes[cur].startVA {
		return ErrAddressNotAvailable
	}

	e.prev, e.next = prev, cur
	if prev == nilHandle {
		as.firstVME = h
	} else {
		as.pools.vmes[prev].next = h
	}
	if cur != nilHandle {
		as.pools.vmes[cur].prev = h
	}
	return nil
}

func (as *AddressSpace) unlink(h int32) {
	e := &as.pools.vmes[h]
	if e.prev != nilHandle {
		as.pools.vmes[e.prev].next = e.next
	} else {
		as.firstVME = e.next
	}
	if e.next != nilHandle {
		as.pools.vmes[e.next].prev = e.prev
	}
}

// findContaining returns the handle of the VME whose [start,end] contains
// va, or nilHandle.
func (as *AddressSpace) findContaining(va addr.VA) int32 {
	for h := as.firstVME; h != nilHandle; h = as.pools.vmes[h].next {
		e := &as.pools.vmes[h]
		if va >= e.startVA && va <= e.endVA {
			return h
		}
	}
	return nilHandle
}
