package pfa

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// Alloc maps size to its free-list size class and scans buckets >= that
// class for the first entry (in size order, since buckets are sorted
// ascending) with enough room at an align-order-aligned address, carving it
// out.
func (p *PFA) Alloc(size addr.MSize, alignOrder addr.MOrder) (addr.PA, error) {
	if size.IsZero() || p.freeMemorySize < size {
		return 0, ErrAllocAddressFailed
	}

	order := sizeToOrder(size)
	for i := int(order); i < NumFreeLists; i++ {
		for h := p.freeList[i]; h != nilHandle; h = p.at(h).freeNext {
			e := p.at(h)
			if e.size() < size {
				continue
			}

			allocAt := e.start
			if !alignOrder.IsZero() {
				aligned, ok := alignWithinEntry(e.start, e.size(), alignOrder, size)
				if !ok {
					continue
				}
				allocAt = aligned
			}

			if err := p.defineUsedMemory(allocAt, size, 0, h); err != nil {
				return 0, err
			}
			return allocAt, nil
		}
	}
	return 0, ErrAllocAddressFailed
}

// Reserve marks [pa, pa+size) as used at a caller-specified address,
// without scanning the free lists for a candidate. Used during boot to
// carve out the kernel image, boot-loader tables, and firmware memory-map
// entries that must never be handed out by Alloc.
func (p *PFA) Reserve(pa addr.PA, size addr.MSize, alignOrder addr.MOrder) error {
	return p.defineUsedMemory(pa, size, alignOrder, nilHandle)
}

// defineUsedMemory is the Go port of
// physical_memory_manager.rs::define_used_memory. target, if not nilHandle,
// names the free entry known to contain [start, start+size); otherwise the
// containing entry is looked up by address.
func (p *PFA) defineUsedMemory(start addr.PA, size addr.MSize, alignOrder addr.MOrder, target int32) error {
	if size.IsZero() || p.freeMemorySize < size {
		return ErrAllocAddressFailed
	}

	if !alignOrder.IsZero() {
		alignedStart, alignedSize := alignAddressAndSize(start, size, alignOrder)
		return p.defineUsedMemory(alignedStart, alignedSize, 0, target)
	}

	h := target
	if h == nilHandle {
		h = p.searchEntryContaining(start)
		if h == nilHandle {
			return ErrAllocAddressFailed
		}
	}
	e := p.at(h)
	requestedEnd := size.ToEndAddress(start)

	switch {
	case e.start == start && e.end == requestedEnd:
		// Exact match: the whole entry is consumed.
		p.unchainFromFreeList(h)
		p.unlink(h)
		p.releaseEntry(h)

	case e.start == start:
		// Trim head: shrink the entry to begin after the carved range.
		oldSize := e.size()
		e.start = start.AddSize(size)
		p.chainToFreeList(h, &oldSize)

	case e.end == requestedEnd:
		// Trim tail: shrink the entry to end just before start.
		oldSize := e.size()
		e.end = start - 1
		p.chainToFreeList(h, &oldSize)

	case e.end == start:
		// Degenerate one-byte carve sitting exactly at the entry's
		// current (already-inclusive) end; only valid for a 1-byte
		// request.
		if size != 1 {
			return ErrAllocAddressFailed
		}
		oldSize := e.size()
		e.end = start - 1
		p.chainToFreeList(h, &oldSize)

	default:
		// Three-way split: carve a hole out of the middle of the
		// entry, creating a new entry for the tail remainder.
		newH, ok := p.createEntry()
		if !ok {
			return ErrEntryPoolRunOut
		}
		oldSize := e.size()
		oldEnd := e.end
		oldNext := e.next

		newE := p.at(newH)
		newE.start, newE.end = start.AddSize(size), oldEnd
		e.end = start - 1

		newE.next = oldNext
		newE.prev = h
		if oldNext != nilHandle {
			p.at(oldNext).prev = newH
		}
		e.next = newH

		p.chainToFreeList(h, &oldSize)
		p.chainToFreeList(newH, nil)
	}

	p.freeMemorySize -= size
	return nil
}
