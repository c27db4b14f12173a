package vmm

import (
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

// TestResizeGrowsInPlace reproduces scenario 4 literally: an io_remap
// followed by a mremap that grows the same VA in place because no other
// VME follows it, extending the same device-backed physical range and
// leaving the PFA untouched.
func TestResizeGrowsInPlace(t *testing.T) {
	as, driver := newTestAS(t)
	perm := ptd.Permission{Readable: true, Writable: true}

	driver.EXPECT().Associate(addr.PA(0xFE10_0000), gomock.Any(), addr.MSize(0x1000), gomock.Any(), gomock.Any()).Return(nil)
	va, err := as.MapAddress(addr.PA(0xFE10_0000), nil, addr.MSize(0x1000), perm, ptd.IOMap|ptd.DeviceMemory)
	if err != nil {
		t.Fatalf("io_remap: %v", err)
	}

	before := as.frames.FreeMemorySize()
	driver.EXPECT().Associate(addr.PA(0xFE10_1000), va.AddSize(addr.MSize(0x1000)), addr.MSize(0x3000), gomock.Any(), gomock.Any()).Return(nil)
	newVA, err := as.Resize(va, addr.MSize(0x4000))
	if err != nil {
		t.Fatalf("mremap: %v", err)
	}
	if newVA != va {
		t.Fatalf("expected in-place resize to keep va=0x%x, got 0x%x", uint64(va), uint64(newVA))
	}

	h := as.findContaining(va)
	if h == nilHandle {
		t.Fatalf("expected resized VME to still cover va")
	}
	if got, want := as.pools.vmes[h].size(), addr.MSize(0x4000); got != want {
		t.Fatalf("VME size after resize = 0x%x, want 0x%x", uint64(got), uint64(want))
	}
	if got := as.frames.FreeMemorySize(); got != before {
		t.Fatalf("PFA free size changed across in-place resize: before=0x%x after=0x%x", uint64(before), uint64(got))
	}
}

// TestResizeFallsBackWhenBlocked reproduces scenario 5: a following VME
// starting at v+0x2000 leaves no room for in-place growth, so the old
// mapping is freed and a fresh VA is returned instead, still backed by the
// same physical range.
func TestResizeFallsBackWhenBlocked(t *testing.T) {
	as, driver := newTestAS(t)
	perm := ptd.Permission{Readable: true, Writable: true}

	driver.EXPECT().Associate(addr.PA(0xFE10_0000), gomock.Any(), addr.MSize(0x1000), gomock.Any(), gomock.Any()).Return(nil)
	va, err := as.MapAddress(addr.PA(0xFE10_0000), nil, addr.MSize(0x1000), perm, ptd.IOMap|ptd.DeviceMemory)
	if err != nil {
		t.Fatalf("io_remap: %v", err)
	}

	blockerVA := va.AddSize(addr.MSize(0x2000))
	driver.EXPECT().Associate(addr.PA(0xFE20_0000), blockerVA, addr.MSize(0x1000), gomock.Any(), gomock.Any()).Return(nil)
	if _, err := as.MapAddress(addr.PA(0xFE20_0000), &blockerVA, addr.MSize(0x1000), perm, ptd.IOMap|ptd.DeviceMemory); err != nil {
		t.Fatalf("map blocker: %v", err)
	}

	driver.EXPECT().Unassociate(va, addr.MSize(0x1000)).Return(nil)
	driver.EXPECT().Associate(addr.PA(0xFE10_0000), gomock.Any(), addr.MSize(0x4000), gomock.Any(), gomock.Any()).Return(nil)

	before := as.frames.FreeMemorySize()
	newVA, err := as.Resize(va, addr.MSize(0x4000))
	if err != nil {
		t.Fatalf("mremap: %v", err)
	}
	if newVA == va {
		t.Fatalf("expected a fresh VA when growth is blocked")
	}
	if got := as.frames.FreeMemorySize(); got != before {
		t.Fatalf("PFA free size changed across blocked resize: before=0x%x after=0x%x", uint64(before), uint64(got))
	}

	if h := as.findContaining(newVA); h == nilHandle {
		t.Fatalf("expected relocated VME to cover the new va")
	}
}
