//go:build linux && memcore_hosted

package hostedbacking

import (
	"testing"

	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/pfa"
)

// TestHostedBackingRoundTrip donates a real mmap-backed region to the PFA,
// carves a frame out of it, and writes through the resulting PA as a host
// byte slice, proving a hosted test run exercises genuine address ranges
// rather than treating addr.PA as a synthetic integer nothing backs.
func TestHostedBackingRoundTrip(t *testing.T) {
	const regionSize = 64 * 1024

	region, err := Map(regionSize)
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	defer region.Unmap()

	frames := pfa.New()
	frames.SetEntryPool(16)
	if err := frames.Free(region.Base, addr.MSize(regionSize), true); err != nil {
		t.Fatalf("donate region: %v", err)
	}

	pa, err := frames.Alloc(addr.PageSize, 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	buf := region.Resolve(addr.VA(uintptr(pa)), addr.PageSize)
	for i := range buf {
		buf[i] = 0xAB
	}
	if buf[len(buf)-1] != 0xAB {
		t.Fatal("write through resolved region did not persist")
	}

	if err := frames.Free(pa, addr.PageSize, false); err != nil {
		t.Fatalf("free back to PFA: %v", err)
	}
	if got, want := frames.FreeMemorySize(), addr.MSize(regionSize); got != want {
		t.Fatalf("FreeMemorySize after round trip = 0x%x, want 0x%x", uint64(got), uint64(want))
	}
}
