package oa

import (
	"testing"

	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

type fakeAddressSpace struct {
	lastOrder addr.MPageOrder
	lastOpt   ptd.Option
	nextVA    addr.VA
	err       error
}

func (f *fakeAddressSpace) AllocNonLinearPages(order addr.MPageOrder, perm ptd.Permission, opt ptd.Option) (addr.VA, error) {
	f.lastOrder, f.lastOpt = order, opt
	if f.err != nil {
		return 0, f.err
	}
	return f.nextVA, nil
}

func TestVMMPageSourceResolvesAllocatedVA(t *testing.T) {
	backing := make([]byte, 64*1024)
	as := &fakeAddressSpace{nextVA: addr.VA(0x2000_0000)}

	var resolvedVA addr.VA
	var resolvedSize addr.MSize
	resolve := func(va addr.VA, size addr.MSize) []byte {
		resolvedVA, resolvedSize = va, size
		return backing[:size]
	}

	src := NewVMMPageSource(as, ptd.CRITICAL, resolve)
	region, err := src.AllocPages(DefaultOrder)
	if err != nil {
		t.Fatalf("AllocPages: %v", err)
	}

	wantSize := DefaultOrder.ToSize(addr.PageSize)
	if resolvedVA != as.nextVA {
		t.Fatalf("resolve called with VA=0x%x, want 0x%x", uint64(resolvedVA), uint64(as.nextVA))
	}
	if resolvedSize != wantSize {
		t.Fatalf("resolve called with size=0x%x, want 0x%x", uint64(resolvedSize), uint64(wantSize))
	}
	if len(region) != int(wantSize) {
		t.Fatalf("returned region len=%d, want %d", len(region), int(wantSize))
	}
	if as.lastOpt&ptd.KERNEL == 0 || as.lastOpt&ptd.WIRED == 0 || as.lastOpt&ptd.CRITICAL == 0 {
		t.Fatalf("expected KERNEL|WIRED|CRITICAL option bits, got %v", as.lastOpt)
	}
}

func TestVMMPageSourcePropagatesAllocError(t *testing.T) {
	as := &fakeAddressSpace{err: ErrOutOfMemory}
	src := NewVMMPageSource(as, 0, func(addr.VA, addr.MSize) []byte { return nil })

	if _, err := src.AllocPages(DefaultOrder); err == nil {
		t.Fatal("expected AllocPages to propagate the address space's error")
	}
}
