package vmm

import (
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

// ShareMemoryWithUser maps the kernel VME at kernelVA into userAS at
// userVA, backed by the same physical frames. Lock order follows // SS5 ("Ordering"): acquire userAS's lock first, then try this (kernel)
// address space's lock; if the kernel lock cannot be taken immediately,
// release the user lock and retry, avoiding deadlock against any operation
// that acquires the two locks the other way around.
//
// On success both the kernel VME and a newly inserted user VME point at a
// shared VMO with refcount 2. Any failure fully unwinds, including
// swapping the kernel VME's VMO back to its original, owned object.
func (as *AddressSpace) ShareMemoryWithUser(userAS *AddressSpace, kernelVA, userVA addr.VA, userPerm ptd.Permission, userOpt ptd.Option) error {
	for {
		userAS.lock.Lock()
		if as.lock.TryLock() {
			break
		}
		userAS.lock.Unlock()
	}
	defer as.lock.Unlock()
	defer userAS.lock.Unlock()

	// as and userAS always share the same SMM lock instance, so only one
	// Lock/Unlock pair is taken here.
	as.sharedLock.Lock()
	defer as.sharedLock.Unlock()

	h := as.findContaining(kernelVA)
	if h == nilHandle {
		return ErrInvalidAddress
	}
	ke := &as.pools.vmes[h]
	if ke.object == nilHandle {
		return ErrInvalidAddress
	}
	originalVMO := ke.object

	sharedH, ok := as.pools.allocVMOGuarded(userOpt)
	if !ok {
		return ErrEntryPoolRunOut
	}
	as.pools.vmos[sharedH] = as.pools.vmos[originalVMO]
	as.pools.vmos[sharedH].shared = true
	as.pools.vmos[sharedH].refCount = 1
	ke.object = sharedH

	// unwind restores ke.object to the still-intact originalVMO slot and
	// discards sharedH (a shallow copy, so its vmp chain is not touched).
	unwind := func() {
		ke.object = originalVMO
		as.pools.freeVMO(sharedH)
	}

	size := ke.size()
	uh, err := userAS.reserveAtLocked(userVA, size, userPerm, userOpt)
	if err != nil {
		unwind()
		return err
	}
	ue := &userAS.pools.vmes[uh]
	ue.object = sharedH
	as.pools.vmos[sharedH].refCount++

	firstPA := as.pools.vmps[as.pools.vmos[sharedH].head].pa
	if err := userAS.driver.Associate(firstPA, ue.startVA, ue.size(), userPerm, userOpt&^ptd.AllowHuge); err != nil {
		userAS.unlink(uh)
		userAS.pools.freeVME(uh)
		unwind()
		return WrapPaging(err)
	}

	// Both VMEs now reference sharedH; originalVMO's vmp chain lives on
	// under sharedH, so only the now-unreferenced original slot is freed.
	as.pools.freeVMO(originalVMO)
	return nil
}

// allocVirtualAddressLocked is AllocVirtualAddress without acquiring the
// address space's lock, for callers that already hold it.
func (as *AddressSpace) allocVirtualAddressLocked(size addr.MSize, perm ptd.Permission, opt ptd.Option) (addr.VA, error) {
	va, err := as.findUsableMemoryArea(size, purposeFor(opt))
	if err != nil {
		return 0, err
	}
	_, err = as.reserveAtLocked(va, size, perm, opt)
	if err != nil {
		return 0, err
	}
	return va, nil
}

// reserveAtLocked inserts an unbacked VME at the caller-specified va,
// without acquiring the address space's lock. Used by ShareMemoryWithUser
// to honor its explicit user_va parameter.
func (as *AddressSpace) reserveAtLocked(va addr.VA, size addr.MSize, perm ptd.Permission, opt ptd.Option) (int32, error) {
	if err := as.assertGapIsolated(va, size.ToEndAddressVA(va)); err != nil {
		return nilHandle, err
	}
	vmeH, ok := as.pools.allocVMEGuarded(opt)
	if !ok {
		return nilHandle, ErrEntryPoolRunOut
	}
	e := &as.pools.vmes[vmeH]
	e.startVA, e.endVA, e.perm, e.opt = va, size.ToEndAddressVA(va), perm, opt
	e.object = nilHandle

	if err := as.insertSorted(vmeH); err != nil {
		as.pools.freeVME(vmeH)
		return nilHandle, err
	}
	return vmeH, nil
}
