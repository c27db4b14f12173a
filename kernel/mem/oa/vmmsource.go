package oa

import (
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
	"github.com/nyxkernel/memcore/kernel/mem/vmm"
)

// pageAllocator is the slice of *vmm.AddressSpace a VMMPageSource needs;
// declared narrowly so tests can substitute a fake without constructing a
// full AddressSpace.
type pageAllocator interface {
	AllocNonLinearPages(order addr.MPageOrder, perm ptd.Permission, opt ptd.Option) (addr.VA, error)
}

// VMMPageSource adapts a kernel AddressSpace's AllocNonLinearPages into the oa.PageSource a Slab needs,
// via resolve, the caller-supplied VA-to-bytes view (the direct map in a
// real boot; kernel/mem/pfa/hostedbacking's mmap resolver under test).
type VMMPageSource struct {
	as pageAllocator
	opt ptd.Option
	resolve func(addr.VA, addr.MSize) []byte
}

// NewVMMPageSource returns a PageSource that donates KERNEL|WIRED pages
// (plus opt, e.g. CRITICAL for the reserve path) from as.
func NewVMMPageSource(as pageAllocator, opt ptd.Option, resolve func(addr.VA, addr.MSize) []byte) *VMMPageSource {
	return &VMMPageSource{as: as, opt: opt | ptd.KERNEL | ptd.WIRED, resolve: resolve}
}

// AllocPages implements PageSource.
func (s *VMMPageSource) AllocPages(order addr.MPageOrder) ([]byte, error) {
	va, err := s.as.AllocNonLinearPages(order, ptd.Data(), s.opt)
	if err != nil {
		return nil, err
	}
	size := order.ToSize(addr.PageSize)
	return s.resolve(va, size), nil
}
