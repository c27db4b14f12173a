// Package pfa implements the Physical Frame Allocator: the singleton that
// owns every free physical frame and serves aligned extents to the VMM. It
// keeps an address-ordered free-entry list plus twelve size-class
// free-lists, with entries linked by arena index rather than raw pointer:
// entries live in a flat slice and are addressed by index, so the
// prev/next/freelist links are plain ints instead of unsafe pointers.
//
// The PFA does no locking of its own; the caller (the VMM, or the SMM
// during pool donation) serializes access.
package pfa

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// NumFreeLists is the number of size-class buckets: bucket k holds entries
// whose size satisfies 2^k <= size < 2^(k+1), capped at 11.
const NumFreeLists = 12

const nilHandle int32 = -1

// entry is one contiguous free physical range, plus the two doubly linked
// chains the original links with raw pointers: the address-ordered chain
// (prev/next) and, when the entry is free, the per-bucket size-sorted
// free-list chain (freePrev/freeNext).
type entry struct {
	prev, next int32
	freePrev, freeNext int32
	start, end addr.PA // inclusive range
	enabled bool
}

func (e *entry) size() addr.MSize { return addr.SizeFromRange(e.start, e.end) }

// PFA is the Physical Frame Allocator.
type PFA struct {
	memorySize addr.MSize
	freeMemorySize addr.MSize
	firstEntry int32
	freeList [NumFreeLists]int32

	pool []entry
}

// New returns a PFA whose metadata pool has no capacity yet; SetEntryPool
// (or GrowEntryPool) must be called before any free/alloc/reserve call, once
// the entries live in a fixed pool bootstrapped from a firmware-donated
// region.
func New() *PFA {
	p := &PFA{firstEntry: nilHandle}
	for i := range p.freeList {
		p.freeList[i] = nilHandle
	}
	return p
}

// SetEntryPool installs the initial metadata pool, sized to hold n entries.
// It is a caller error to call this more than once; use GrowEntryPool to add
// capacity later.
func (p *PFA) SetEntryPool(n int) {
	p.pool = make([]entry, n)
}

// GrowEntryPool appends n more entry slots to the metadata pool. Callers
// (the VMM's pool-donation path) invoke this when alloc/free/reserve report
// ErrEntryPoolRunOut.
func (p *PFA) GrowEntryPool(n int) {
	p.pool = append(p.pool, make([]entry, n)...)
}

// EntryPoolLen and EntryPoolFree report pool occupancy, used by the VMM to
// decide when to schedule a donation.
func (p *PFA) EntryPoolLen() int { return len(p.pool) }

func (p *PFA) EntryPoolFree() int {
	free := 0
	for i := range p.pool {
		if !p.pool[i].enabled {
			free++
		}
	}
	return free
}

// FreeMemorySize returns the total size of currently free physical memory.
func (p *PFA) FreeMemorySize() addr.MSize { return p.freeMemorySize }

// MemorySize returns the total size of physical memory ever donated.
func (p *PFA) MemorySize() addr.MSize { return p.memorySize }

func (p *PFA) createEntry() (int32, bool) {
	for i := range p.pool {
		if !p.pool[i].enabled {
			p.pool[i] = entry{prev: nilHandle, next: nilHandle, freePrev: nilHandle, freeNext: nilHandle, enabled: true}
			return int32(i), true
		}
	}
	return nilHandle, false
}

func (p *PFA) releaseEntry(h int32) {
	p.pool[h] = entry{enabled: false}
}

func (p *PFA) at(h int32) *entry {
	if h == nilHandle {
		return nil
	}
	return &p.pool[h]
}

// searchEntryContaining returns the handle of the address-ordered entry
// whose [start,end] range contains pa, or nilHandle.
func (p *PFA) searchEntryContaining(pa addr.PA) int32 {
	for h := p.firstEntry; h != nilHandle; h = p.at(h).next {
		e := p.at(h)
		if pa >= e.start && pa <= e.end {
			return h
		}
	}
	return nilHandle
}

// sizeToOrder maps a non-zero size to its bucket: floor(log2(s)), clamped
// to NumFreeLists-1.
func sizeToOrder(s addr.MSize) addr.MOrder {
	limit := addr.MOrder(NumFreeLists)
	return (s + 1).ToOrder(&limit) - 1
}

func (p *PFA) unchainFromFreeList(h int32) {
	e := p.at(h)
	order := sizeToOrder(e.size())
	if p.freeList[order] == h {
		p.freeList[order] = e.freeNext
	}
	if e.freePrev != nilHandle {
		p.at(e.freePrev).freeNext = e.freeNext
	}
	if e.freeNext != nilHandle {
		p.at(e.freeNext).freePrev = e.freePrev
	}
	e.freePrev, e.freeNext = nilHandle, nilHandle
}

// chainToFreeList inserts h into its size-class bucket's free list,
// keeping the bucket sorted by size ascending. If oldSize is supplied, the
// entry is already chained under the bucket oldSize maps to; it is first
// unlinked from there and then re-inserted in sorted position, even when
// its new size falls in the same bucket.
func (p *PFA) chainToFreeList(h int32, oldSize *addr.MSize) {
	e := p.at(h)
	newOrder := sizeToOrder(e.size())
	if oldSize != nil {
		oldOrder := sizeToOrder(*oldSize)
		if p.freeList[oldOrder] == h {
			p.freeList[oldOrder] = e.freeNext
		}
		if e.freePrev != nilHandle {
			p.at(e.freePrev).freeNext = e.freeNext
		}
		if e.freeNext != nilHandle {
			p.at(e.freeNext).freePrev = e.freePrev
		}
		e.freePrev, e.freeNext = nilHandle, nilHandle
	}

	head := p.freeList[newOrder]
	if head == nilHandle {
		p.freeList[newOrder] = h
		return
	}
	if p.at(head).size() >= e.size() {
		p.at(head).freePrev = h
		e.freeNext = head
		p.freeList[newOrder] = h
		return
	}
	cur := head
	for {
		next := p.at(cur).freeNext
		if next == nilHandle {
			p.at(cur).freeNext = h
			e.freePrev = cur
			return
		}
		if p.at(next).size() > e.size() {
			p.at(cur).freeNext = h
			e.freePrev = cur
			e.freeNext = next
			p.at(next).freePrev = h
			return
		}
		cur = next
	}
}

func (p *PFA) linkAfter(h, newH int32) {
	e, newE := p.at(h), p.at(newH)
	newE.next = e.next
	newE.prev = h
	if e.next != nilHandle {
		p.at(e.next).prev = newH
	}
	e.next = newH
}

func (p *PFA) unlink(h int32) {
	e := p.at(h)
	if e.prev != nilHandle {
		p.at(e.prev).next = e.next
	} else {
		p.firstEntry = e.next
	}
	if e.next != nilHandle {
		p.at(e.next).prev = e.prev
	}
}
