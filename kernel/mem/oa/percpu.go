package oa

import "golang.org/x/sys/cpu"

// percpuSlot holds one CPU's private Heap, padded to a cache line
// so that two
// CPUs allocating from adjacent slots never false-share the cache line a
// third, unrelated CPU's counters live on — the idiomatic Go expression of
// the original's #[repr(align(64))] per-CPU heap struct.
type percpuSlot struct {
	heap *Heap
	_ cpu.CacheLinePad
}

// PerCPU is "each CPU has a private byte-granularity heap" :
// one Heap per CPU, with no lock shared across slots. A LocalSlab backing
// one of these heaps' buckets would be the cross-CPU-unsafe choice; Heap's
// buckets stay GlobalSlab so a caller that migrates mid-allocation (no
// preemption point exists inside Alloc/Free, never corrupts
// another CPU's slot, while cross-slot contention never actually happens
// in practice.
type PerCPU struct {
	slots []percpuSlot
}

// NewPerCPU constructs n per-CPU slots, each with its own Heap grown from
// its own PageSource (typically a VMMPageSource scoped to that CPU's
// portion of the kernel address space).
func NewPerCPU(sources []PageSource) *PerCPU {
	pc := &PerCPU{slots: make([]percpuSlot, len(sources))}
	for i, src := range sources {
		pc.slots[i].heap = NewHeap(src)
	}
	return pc
}

// Heap returns the private Heap for cpuID. Calling this for any other CPU's
// ID and then allocating from it without that CPU's cooperation defeats the
// whole point of a per-CPU heap; callers must only ever touch their own
// cpuID's slot.
func (pc *PerCPU) Heap(cpuID int) *Heap { return pc.slots[cpuID].heap }

// NumCPU reports how many per-CPU slots were configured.
func (pc *PerCPU) NumCPU() int { return len(pc.slots) }
