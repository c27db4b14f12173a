package vmm

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// findUsableMemoryArea walks the VME list and returns the start of the
// first gap of at least size bytes that falls entirely within the window
// assigned to purpose. Returns ErrAddressNotAvailable on
// exhaustion.
func (as *AddressSpace) findUsableMemoryArea(size addr.MSize, purpose Purpose) (addr.VA, error) {
	w := as.windows.forPurpose(purpose)
	if size.IsZero() || size > w.Size {
		return 0, ErrInvalidSize
	}
	windowEnd := w.end()

	cursor := w.Base
	for h := as.firstVME; h != nilHandle; h = as.pools.vmes[h].next {
		e := &as.pools.vmes[h]
		if e.endVA < cursor {
			// entirely before the window or before the cursor; skip.
			continue
		}
		if e.startVA > windowEnd {
			// past the window; no further entry can matter.
			break
		}
		if e.startVA > cursor {
			gap := addr.SizeFromRangeVA(cursor, e.startVA-1)
			if gap >= size {
				return as.finishGap(cursor, size, windowEnd)
			}
		}
		if e.endVA >= windowEnd {
			return 0, ErrAddressNotAvailable
		}
		cursor = e.endVA + 1
	}

	return as.finishGap(cursor, size, windowEnd)
}

func (as *AddressSpace) finishGap(start addr.VA, size addr.MSize, windowEnd addr.VA) (addr.VA, error) {
	end := size.ToEndAddressVA(start)
	if end > windowEnd {
		return 0, ErrAddressNotAvailable
	}
	if err := as.assertGapIsolated(start, end); err != nil {
		return 0, err
	}
	return start, nil
}

// assertGapIsolated verifies the candidate [start,end] range truly
// intersects neither neighbor, the overlap check calls out
// explicitly ("An overlap check asserts the chosen range intersects
// neither the found gap's neighbors").
func (as *AddressSpace) assertGapIsolated(start, end addr.VA) error {
	for h := as.firstVME; h != nilHandle; h = as.pools.vmes[h].next {
		e := &as.pools.vmes[h]
		if start <= e.endVA && end >= e.startVA {
			return ErrAddressNotAvailable
		}
	}
	return nil
}
