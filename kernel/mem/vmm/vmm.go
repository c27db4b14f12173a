// Package vmm implements the Virtual Memory Manager: the per-address-space
// controller that allocates virtual ranges, binds them to physical frames
// through the PFA and a ptd.Driver, and tracks their lifecycle as Virtual
// Memory Entries, with the VME/VMO/VMP linked structures using the same
// arena-and-handle design pfa uses.
package vmm

import (
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

func purposeFor(opt ptd.Option) Purpose {
	switch {
	case opt&ptd.IOMap != 0:
		return PurposeMap
	case opt&ptd.STACK != 0:
		return PurposeUserStack
	default:
		return PurposeMalloc
	}
}

// AllocAndMap finds a gap, builds a VME backed by a linear VMO against
// [pa, pa+size), installs page-table translations, and returns the
// assigned VA. Any failure after the gap is found rolls back every
// VMP/VMO/VME/translation already installed.
func (as *AddressSpace) AllocAndMap(size addr.MSize, pa addr.PA, perm ptd.Permission, opt ptd.Option) (addr.VA, error) {
	return as.mapAddress(pa, nil, size, perm, opt)
}

// MapAddress is the general map primitive: if va is nil,
// a gap is located automatically; otherwise the caller-supplied VA is
// validated and used directly. If opt has IOMap set, the whole region is
// installed with a single Associate call (allowing the driver to coalesce
// large pages); otherwise each page is mapped individually.
func (as *AddressSpace) MapAddress(pa addr.PA, va *addr.VA, size addr.MSize, perm ptd.Permission, opt ptd.Option) (addr.VA, error) {
	return as.mapAddress(pa, va, size, perm, opt)
}

func (as *AddressSpace) mapAddress(pa addr.PA, vaHint *addr.VA, size addr.MSize, perm ptd.Permission, opt ptd.Option) (addr.VA, error) {
	as.lock.Lock()
	defer as.lock.Unlock()
	as.sharedLock.Lock()
	defer as.sharedLock.Unlock()

	if err := ptd.Validate(perm, opt, size); err != nil {
		return 0, WrapPaging(err)
	}
	if size.IsZero() {
		return 0, ErrInvalidSize
	}

	var va addr.VA
	if vaHint != nil {
		va = *vaHint
		if err := as.assertGapIsolated(va, size.ToEndAddressVA(va)); err != nil {
			return 0, err
		}
	} else {
		found, err := as.findUsableMemoryArea(size, purposeFor(opt))
		if err != nil {
			return 0, err
		}
		va = found
	}

	vmeH, vmoH, err := as.buildLinearVME(va, pa, size, perm, opt)
	if err != nil {
		return 0, err
	}

	if opt&ptd.IOMap != 0 {
		if err := as.driver.Associate(pa, va, size, perm, opt); err != nil {
			as.rollbackVME(vmeH, vmoH)
			return 0, WrapPaging(err)
		}
	} else {
		if err := as.associatePageByPage(pa, va, size, perm, opt); err != nil {
			as.rollbackVME(vmeH, vmoH)
			return 0, err
		}
	}

	if err := as.insertSorted(vmeH); err != nil {
		as.driver.Unassociate(va, size)
		as.rollbackVME(vmeH, vmoH)
		return 0, err
	}
	return va, nil
}

// buildLinearVME allocates a VME and a VMO whose VMPs map linearly against
// [pa, pa+size), without touching the page table or the address space's
// VME list yet.
func (as *AddressSpace) buildLinearVME(va addr.VA, pa addr.PA, size addr.MSize, perm ptd.Permission, opt ptd.Option) (vmeH, vmoH int32, err error) {
	vmeH, ok := as.pools.allocVMEGuarded(opt)
	if !ok {
		if !as.retryAfterPoolExhaustion(opt, func() bool { vmeH, ok = as.pools.allocVMEGuarded(opt); return ok }) {
			return nilHandle, nilHandle, ErrEntryPoolRunOut
		}
	}
	vmoH, ok = as.pools.allocVMOGuarded(opt)
	if !ok {
		as.pools.freeVME(vmeH)
		return nilHandle, nilHandle, ErrEntryPoolRunOut
	}

	status := StatusActive
	if opt&ptd.WIRED != 0 {
		status = StatusUnswappable
	}

	pageSize := addr.PageSize
	npages := size.ToIndex(pageSize)
	for i := addr.MIndex(0); i < npages; i++ {
		framePA := pa.AddSize(addr.MSize(i) * pageSize)
		if _, ok := as.pools.attachVMP(vmoH, i, framePA, status, opt); !ok {
			as.pools.releaseVMOChain(vmoH)
			as.pools.freeVME(vmeH)
			return nilHandle, nilHandle, ErrEntryPoolRunOut
		}
	}

	e := &as.pools.vmes[vmeH]
	e.startVA = va
	e.endVA = size.ToEndAddressVA(va)
	e.perm = perm
	e.opt = opt
	e.object = vmoH
	return vmeH, vmoH, nil
}

func (as *AddressSpace) associatePageByPage(pa addr.PA, va addr.VA, size addr.MSize, perm ptd.Permission, opt ptd.Option) error {
	pageSize := addr.PageSize
	npages := size.ToIndex(pageSize)
	nonHuge := opt &^ ptd.AllowHuge

	for i := addr.MIndex(0); i < npages; i++ {
		pageVA := va.AddSize(addr.MSize(i) * pageSize)
		pagePA := pa.AddSize(addr.MSize(i) * pageSize)
		if err := as.driver.Associate(pagePA, pageVA, pageSize, perm, nonHuge); err != nil {
			as.unassociateRange(va, i, pageSize)
			return WrapPaging(err)
		}
	}
	return nil
}

func (as *AddressSpace) unassociateRange(va addr.VA, pages addr.MIndex, pageSize addr.MSize) {
	if pages == 0 {
		return
	}
	as.driver.Unassociate(va, addr.MSize(pages)*pageSize)
}

func (as *AddressSpace) rollbackVME(vmeH, vmoH int32) {
	if vmoH != nilHandle {
		as.pools.releaseVMOChain(vmoH)
	}
	if vmeH != nilHandle {
		as.pools.freeVME(vmeH)
	}
}

// AllocVirtualAddress reserves [va, va+size) with no backing VMO and
// returns the assigned VA. No translations are installed, and this package
// has no call that attaches pages to the reservation afterwards.
func (as *AddressSpace) AllocVirtualAddress(size addr.MSize, perm ptd.Permission, opt ptd.Option) (addr.VA, error) {
	as.lock.Lock()
	defer as.lock.Unlock()
	as.sharedLock.Lock()
	defer as.sharedLock.Unlock()

	if err := ptd.Validate(perm, opt, size); err != nil {
		return 0, WrapPaging(err)
	}
	return as.allocVirtualAddressLocked(size, perm, opt)
}

// AllocNonLinearPages backs a pageOrder-sized reservation with
// independently sourced physical frames (one PFA.Alloc call per page
// rather than one contiguous extent), then installs translations in a
// single pass over the resulting VMO.
func (as *AddressSpace) AllocNonLinearPages(pageOrder addr.MPageOrder, perm ptd.Permission, opt ptd.Option) (addr.VA, error) {
	as.lock.Lock()
	defer as.lock.Unlock()
	as.sharedLock.Lock()
	defer as.sharedLock.Unlock()

	pageSize := addr.PageSize
	size := pageOrder.ToSize(pageSize)
	if err := ptd.Validate(perm, opt, size); err != nil {
		return 0, WrapPaging(err)
	}

	va, err := as.findUsableMemoryArea(size, purposeFor(opt))
	if err != nil {
		return 0, err
	}

	vmeH, ok := as.pools.allocVMEGuarded(opt)
	if !ok {
		return 0, ErrEntryPoolRunOut
	}
	vmoH, ok := as.pools.allocVMOGuarded(opt)
	if !ok {
		as.pools.freeVME(vmeH)
		return 0, ErrEntryPoolRunOut
	}

	status := StatusActive
	if opt&ptd.WIRED != 0 {
		status = StatusUnswappable
	}

	npages := pageOrder.ToPages()
	framesAllocated := make([]addr.PA, 0, npages)
	for i := addr.MIndex(0); uint64(i) < npages; i++ {
		framePA, err := as.frames.Alloc(pageSize, 0)
		if err != nil {
			as.rollbackNonLinear(vmeH, vmoH, framesAllocated)
			return 0, ErrAllocAddressFailed
		}
		framesAllocated = append(framesAllocated, framePA)
		if _, ok := as.pools.attachVMP(vmoH, i, framePA, status, opt); !ok {
			as.rollbackNonLinear(vmeH, vmoH, framesAllocated)
			return 0, ErrEntryPoolRunOut
		}
	}

	for i := addr.MIndex(0); uint64(i) < npages; i++ {
		pageVA := va.AddSize(addr.MSize(i) * pageSize)
		pagePA := framesAllocated[i]
		if err := as.driver.Associate(pagePA, pageVA, pageSize, perm, opt&^ptd.AllowHuge); err != nil {
			as.unassociateRange(va, i, pageSize)
			as.rollbackNonLinear(vmeH, vmoH, framesAllocated)
			return 0, WrapPaging(err)
		}
	}

	e := &as.pools.vmes[vmeH]
	e.startVA, e.endVA, e.perm, e.opt, e.object = va, size.ToEndAddressVA(va), perm, opt, vmoH

	if err := as.insertSorted(vmeH); err != nil {
		as.driver.Unassociate(va, size)
		as.rollbackNonLinear(vmeH, vmoH, framesAllocated)
		return 0, err
	}
	return va, nil
}

func (as *AddressSpace) rollbackNonLinear(vmeH, vmoH int32, frames []addr.PA) {
	for _, pa := range frames {
		as.frames.Free(pa, addr.PageSize, false)
	}
	as.pools.releaseVMOChain(vmoH)
	as.pools.freeVME(vmeH)
}
