package vmm

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// GetPhysicalAddressList is the scatter-gather query DMA descriptor setup
// uses: it fills buffer with the physical address backing each of nPages
// pages starting offsetPages into the VME containing va, and returns how
// many entries were written. A page with no VMP yet (a lazily-backed
// reservation) halts the scan and returns the count filled so far.
func (as *AddressSpace) GetPhysicalAddressList(va addr.VA, offsetPages addr.MIndex, nPages int, buffer []addr.PA) (int, error) {
	as.lock.Lock()
	defer as.lock.Unlock()
	as.sharedLock.Lock()
	defer as.sharedLock.Unlock()

	h := as.findContaining(va)
	if h == nilHandle {
		return 0, ErrInvalidAddress
	}
	e := &as.pools.vmes[h]
	if e.object == nilHandle {
		return 0, nil
	}

	count := 0
	for i := 0; i < nPages && i < len(buffer); i++ {
		pIndex := offsetPages + addr.MIndex(i)
		ph := as.pools.vmpAt(e.object, pIndex)
		if ph == nilHandle {
			break
		}
		buffer[i] = as.pools.vmps[ph].pa
		count++
	}
	return count, nil
}
