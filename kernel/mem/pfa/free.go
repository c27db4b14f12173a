package pfa

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// Free returns [pa, pa+size) to the free pool. isInitializing marks a
// first-time donation (boot memory map entries, or a region reclaimed from
// ACPI tables after ACPI subsystem init) rather than the release of a
// previously allocated extent; it grows memorySize in addition to
// freeMemorySize, distinguishing calls that introduce new memory from
// ones that merely return it.
func (p *PFA) Free(pa addr.PA, size addr.MSize, isInitializing bool) error {
	if size.IsZero() {
		return ErrInvalidSize
	}
	if !isInitializing && p.memorySize < p.freeMemorySize+size {
		return ErrFreeAddressFailed
	}
	end := size.ToEndAddress(pa)
	if err := p.defineFreeMemory(pa, end); err != nil {
		return err
	}
	if isInitializing {
		p.memorySize += size
	}
	return nil
}

// defineFreeMemory inserts [start, end] into the free-entry list and
// coalesces it with immediate neighbors in both directions. An overlap
// with an existing entry is treated as a caller contract violation
// (ErrAlreadyFree), since nothing in this system frees physical memory
// without having obtained it from Alloc/Reserve first.
func (p *PFA) defineFreeMemory(start, end addr.PA) error {
	prev := p.searchEntryPreviousAddress(start)
	var next int32
	if prev == nilHandle {
		next = p.firstEntry
	} else {
		next = p.at(prev).next
	}

	if prev != nilHandle && p.at(prev).end >= start {
		return ErrAlreadyFree
	}
	if next != nilHandle && p.at(next).start <= end {
		return ErrAlreadyFree
	}

	size := addr.SizeFromRange(start, end)
	mergeLeft := prev != nilHandle && p.at(prev).end+1 == start
	mergeRight := next != nilHandle && end+1 == p.at(next).start

	switch {
	case mergeLeft && mergeRight:
		pe, ne := p.at(prev), p.at(next)
		oldSize := pe.size()
		pe.end = ne.end
		p.unchainFromFreeList(next)
		p.unlink(next)
		p.releaseEntry(next)
		p.chainToFreeList(prev, &oldSize)

	case mergeLeft:
		pe := p.at(prev)
		oldSize := pe.size()
		pe.end = end
		p.chainToFreeList(prev, &oldSize)

	case mergeRight:
		ne := p.at(next)
		oldSize := ne.size()
		ne.start = start
		p.chainToFreeList(next, &oldSize)

	default:
		h, ok := p.createEntry()
		if !ok {
			return ErrEntryPoolRunOut
		}
		e := p.at(h)
		e.start, e.end = start, end
		if prev == nilHandle {
			e.next = p.firstEntry
			if p.firstEntry != nilHandle {
				p.at(p.firstEntry).prev = h
			}
			e.prev = nilHandle
			p.firstEntry = h
		} else {
			p.linkAfter(prev, h)
		}
		p.chainToFreeList(h, nil)
	}

	p.freeMemorySize += size
	return nil
}

// searchEntryPreviousAddress returns the handle of the address-ordered
// entry with the greatest start address still less than pa, or nilHandle
// if pa precedes every entry.
func (p *PFA) searchEntryPreviousAddress(pa addr.PA) int32 {
	prev := int32(nilHandle)
	for h := p.firstEntry; h != nilHandle; h = p.at(h).next {
		if p.at(h).start >= pa {
			break
		}
		prev = h
	}
	return prev
}
