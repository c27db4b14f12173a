package oa

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// DefaultOrder is the page order a Slab donates on pool exhaustion.
const DefaultOrder = addr.MPageOrder(2)

// PageSource is what a Slab needs to grow its pool when it runs dry: an
// order-sized page allocation resolved to a live byte view it can carve
// into slots. kernel/mem/vmm.AddressSpace satisfies the
// allocation half through VMMPageSource; resolving the returned VA to
// bytes is left to the caller's resolve function (the kernel's direct map
// once paging is live, or an mmap-backed resolver under the
// memcore_hosted test build).
type PageSource interface {
	AllocPages(order addr.MPageOrder) ([]byte, error)
}
