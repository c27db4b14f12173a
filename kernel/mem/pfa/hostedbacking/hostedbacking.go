//go:build linux && memcore_hosted

// Package hostedbacking backs "physical" memory with real host pages under
// a Linux test build, so the PFA, VMM and OA test suites can donate,
// carve, and write through genuine address ranges instead of treating
// addr.PA/addr.VA as synthetic integers nothing can be read or written
// through.
//
// This package is never linked into a real kernel image: the
// memcore_hosted build tag exists solely to gate it out of that build.
package hostedbacking

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/nyxkernel/memcore/kernel/mem/addr"
)

// Region is one mmap-backed extent. Its Base doubles as the addr.PA (and,
// for OA's tests, the addr.VA) value handed to the allocators under test:
// the host pointer value itself is the only "physical address" a hosted
// test run has.
type Region struct {
	Base addr.PA
	data []byte
}

// Map reserves size bytes of anonymous, read-write memory via mmap and
// returns a Region describing it. size is rounded up to the host page
// size by the kernel; callers should size requests in whole pages.
func Map(size uintptr) (*Region, error) {
	data, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("hostedbacking: mmap %d bytes: %w", size, err)
	}
	base := addr.PA(uintptr(unsafe.Pointer(&data[0])))
	return &Region{Base: base, data: data}, nil
}

// Unmap releases the region's backing memory. Using the Region or any
// slice derived from it afterward is a use-after-free.
func (r *Region) Unmap() error {
	return unix.Munmap(r.data)
}

// Bytes returns a slice over [offset, offset+size) of the region, for
// handing a PFA-carved sub-extent to a Pool/Slab's AddPool as live,
// writable storage.
func (r *Region) Bytes(offset, size addr.MSize) []byte {
	return r.data[offset : offset+size]
}

// Size reports the region's total byte length.
func (r *Region) Size() addr.MSize { return addr.MSize(len(r.data)) }

// Resolve adapts a Region into the addr.VA/addr.MSize -> []byte resolver
// oa.VMMPageSource needs, for a hosted test's kernel address space whose
// "virtual" addresses are, in practice, the same host pointer values as
// its physical ones (no real MMU sits underneath a hosted test run).
func (r *Region) Resolve(va addr.VA, size addr.MSize) []byte {
	off := addr.MSize(uintptr(va)) - addr.MSize(uintptr(r.Base))
	return r.Bytes(off, size)
}
