package vmm

import (
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

// attachVMP appends a page binding to the tail of vmoH's sorted vmp chain.
// Callers build a VMO's page list in increasing pIndex order (linear
// population against a contiguous physical range, or one physical frame at
// a time for a non-linear allocation), so appending at the tail (found by
// walking the chain) preserves the sorted-by-p_index invariant.
func (p *Pools) attachVMP(vmoH int32, pIndex addr.MIndex, pa addr.PA, status VMPStatus, opt ptd.Option) (int32, bool) {
	h, ok := p.allocVMPGuarded(opt)
	if !ok {
		return nilHandle, false
	}
	g := &p.vmps[h]
	g.pIndex, g.pa, g.status = pIndex, pa, status
	g.next = nilHandle

	vo := &p.vmos[vmoH]
	if vo.head == nilHandle {
		vo.head = h
		return h, true
	}
	tail := vo.head
	for p.vmps[tail].next != nilHandle {
		tail = p.vmps[tail].next
	}
	p.vmps[tail].next = h
	return h, true
}

// firstPA returns the physical address backing the lowest pIndex in vmoH's
// chain. Used by Resize to recover an IO-mapped VME's device base address,
// since IO mappings do not own their frames and therefore cannot be
// regrown or relocated through the PFA.
func (p *Pools) firstPA(vmoH int32) addr.PA {
	return p.vmps[p.vmos[vmoH].head].pa
}

// vmpAt returns the vmp handle holding the given pIndex within vmoH's
// chain, or nilHandle.
func (p *Pools) vmpAt(vmoH int32, pIndex addr.MIndex) int32 {
	for h := p.vmos[vmoH].head; h != nilHandle; h = p.vmps[h].next {
		if p.vmps[h].pIndex == pIndex {
			return h
		}
	}
	return nilHandle
}

// releaseVMOChain frees every vmp in vmoH's chain, then the vmo slot
// itself.
func (p *Pools) releaseVMOChain(vmoH int32) {
	h := p.vmos[vmoH].head
	for h != nilHandle {
		next := p.vmps[h].next
		p.freeVMP(h)
		h = next
	}
	p.freeVMO(vmoH)
}
