package vmm

import (
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

// Resize grows or shrinks an IO-mapped VME. It first attempts in-place expansion by checking whether the
// next VME's start leaves enough room; if that is blocked, it falls back to
// freeing the old mapping and remapping at a fresh VA with the same
// permission and option flags. An entry that is not IO-mapped is rejected
// with ErrInvalidAddress.
func (as *AddressSpace) Resize(va addr.VA, newSize addr.MSize) (addr.VA, error) {
	as.lock.Lock()
	as.sharedLock.Lock()
	unlockAll := func() {
		as.sharedLock.Unlock()
		as.lock.Unlock()
	}

	h := as.findContaining(va)
	if h == nilHandle {
		unlockAll()
		return 0, ErrInvalidAddress
	}
	e := &as.pools.vmes[h]
	if e.opt&ptd.IOMap == 0 {
		unlockAll()
		return 0, ErrInvalidAddress
	}
	if newSize.IsZero() {
		unlockAll()
		return 0, ErrInvalidSize
	}

	oldSize := e.size()
	if newSize <= oldSize {
		e.endVA = newSize.ToEndAddressVA(e.startVA)
		unlockAll()
		return va, nil
	}

	newEnd := newSize.ToEndAddressVA(e.startVA)
	canExpand := e.next == nilHandle || newEnd < as.pools.vmes[e.next].startVA
	if canExpand {
		growBy := newSize - oldSize
		growStart := e.startVA.AddSize(oldSize)
		pageSize := addr.PageSize

		// An IO mapping's physical range is the device's, not the PFA's:
		// growth extends the same device-contiguous range rather than
		// drawing a fresh, unrelated extent from the frame allocator.
		basePA := as.pools.firstPA(e.object)
		startIndex := oldSize.ToIndex(pageSize)
		npages := growBy.ToIndex(pageSize)
		for i := addr.MIndex(0); i < npages; i++ {
			pagePA := basePA.AddSize(oldSize + addr.MSize(i)*pageSize)
			if _, ok := as.pools.attachVMP(e.object, startIndex+i, pagePA, StatusActive, e.opt); !ok {
				unlockAll()
				return 0, ErrEntryPoolRunOut
			}
		}

		growPA := basePA.AddSize(oldSize)
		if err := as.driver.Associate(growPA, growStart, growBy, e.perm, e.opt); err != nil {
			unlockAll()
			return 0, WrapPaging(err)
		}
		e.endVA = newEnd
		unlockAll()
		return va, nil
	}

	perm, opt := e.perm, e.opt
	basePA := as.pools.firstPA(e.object)
	unlockAll()

	// The blocked path relocates the VA but keeps mapping the same
	// device-backed physical range: freeing an IO-mapped VME never
	// returns frames to the PFA, and remapping it must not invent a new
	// physical backing through one either.
	if err := as.FreeAddress(va); err != nil {
		return 0, err
	}
	return as.MapAddress(basePA, nil, newSize, perm, opt)
}
