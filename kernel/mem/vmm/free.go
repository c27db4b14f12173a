package vmm

import (
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

// FreeAddress tears down the VME containing va :
// unmap every page; skip returning frames to the PFA when the VME is
// IO-mapped or marked DoNotFreePhysicalAddress; if backed by a shared VMO
// with refcount > 1, only unmap in this address space and decrement;
// otherwise absorb/own the VMO and free it. Finally unlink the VME and
// return it to the pool.
func (as *AddressSpace) FreeAddress(va addr.VA) error {
	as.lock.Lock()
	defer as.lock.Unlock()
	as.sharedLock.Lock()
	defer as.sharedLock.Unlock()

	h := as.findContaining(va)
	if h == nilHandle {
		return ErrInvalidAddress
	}
	return as.teardownVME(h)
}

func (as *AddressSpace) teardownVME(h int32) error {
	e := &as.pools.vmes[h]

	if err := as.driver.Unassociate(e.startVA, e.size()); err != nil {
		return WrapPaging(err)
	}

	if e.object != nilHandle {
		as.releaseObject(e)
	}

	as.unlink(h)
	as.pools.freeVME(h)
	return nil
}

// releaseObject frees the physical frames and VMO/VMP metadata owned by a
// VME being torn down, honoring the shared-refcount and ownership rules
// describes for free_address.
func (as *AddressSpace) releaseObject(e *vme) {
	vmoH := e.object
	vo := &as.pools.vmos[vmoH]

	if vo.shared && vo.refCount > 1 {
		vo.refCount--
		e.object = nilHandle
		return
	}

	ownsFrames := e.opt&ptd.IOMap == 0 && e.opt&ptd.DoNotFreePhysicalAddress == 0
	if ownsFrames {
		for ph := vo.head; ph != nilHandle; ph = as.pools.vmps[ph].next {
			g := &as.pools.vmps[ph]
			as.frames.Free(g.pa, addr.PageSize, false)
		}
	}
	as.pools.releaseVMOChain(vmoH)
	e.object = nilHandle
}

// FreeAllMapping tears down every VME in reverse list order, then destroys
// the page table.
func (as *AddressSpace) FreeAllMapping() error {
	as.lock.Lock()
	defer as.lock.Unlock()
	as.sharedLock.Lock()
	defer as.sharedLock.Unlock()

	var last int32 = nilHandle
	for h := as.firstVME; h != nilHandle; h = as.pools.vmes[h].next {
		last = h
	}
	for h := last; h != nilHandle; {
		prev := as.pools.vmes[h].prev
		if err := as.teardownVME(h); err != nil {
			return err
		}
		h = prev
	}

	if err := as.driver.DestroyPageTable(); err != nil {
		return WrapPaging(err)
	}
	return nil
}
