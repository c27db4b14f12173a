package bootmem

import (
	"testing"

	"github.com/nyxkernel/memcore/kernel/boot"
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/pfa"
)

// TestBootDonationScenario reproduces scenario 1 literally:
// two donated ranges, one reservation carved out of the first.
func TestBootDonationScenario(t *testing.T) {
	frames := pfa.New()
	frames.SetEntryPool(16)

	desc := &boot.Descriptor{
		MemoryMap: []boot.MemoryMapEntry{
			{Type: boot.RegionAvailable, Start: addr.PA(0x10_0000), Length: addr.MSize(0x9000_0000)},
			{Type: boot.RegionAvailable, Start: addr.PA(0xA000_0000), Length: addr.MSize(0x1000_0000)},
		},
		KernelImage: boot.MemoryMapEntry{Start: addr.PA(0x10_0000), Length: addr.MSize(0x50_0000)},
	}

	if err := Donate(frames, desc); err != nil {
		t.Fatalf("Donate: %v", err)
	}

	if got, want := frames.MemorySize(), addr.MSize(0x9000_0000+0x1000_0000); got != want {
		t.Fatalf("MemorySize = 0x%x, want 0x%x", uint64(got), uint64(want))
	}
	if got, want := frames.FreeMemorySize(), addr.MSize(0x9000_0000+0x1000_0000-0x50_0000); got != want {
		t.Fatalf("FreeMemorySize = 0x%x, want 0x%x", uint64(got), uint64(want))
	}
}

func TestACPIReclaimIsDonatedThenReserved(t *testing.T) {
	frames := pfa.New()
	frames.SetEntryPool(16)

	desc := &boot.Descriptor{
		MemoryMap: []boot.MemoryMapEntry{
			{Type: boot.RegionAvailable, Start: addr.PA(0x10_0000), Length: addr.MSize(0x10_0000)},
			{Type: boot.RegionACPIReclaim, Start: addr.PA(0x20_0000), Length: addr.MSize(0x1000)},
		},
	}

	if err := Donate(frames, desc); err != nil {
		t.Fatalf("Donate: %v", err)
	}

	// The ACPI-reclaim range was donated (counted in MemorySize) but then
	// reserved straight back out, so it is not part of FreeMemorySize.
	if got, want := frames.MemorySize(), addr.MSize(0x10_0000+0x1000); got != want {
		t.Fatalf("MemorySize = 0x%x, want 0x%x", uint64(got), uint64(want))
	}
	if got, want := frames.FreeMemorySize(), addr.MSize(0x10_0000); got != want {
		t.Fatalf("FreeMemorySize = 0x%x, want 0x%x (ACPI-reclaim range must stay reserved)", uint64(got), uint64(want))
	}

	// Allocating a frame must never return an address within the
	// ACPI-reclaim range.
	pa, err := frames.Alloc(addr.MSize(0x10_0000), 0)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if pa == addr.PA(0x20_0000) {
		t.Fatal("Alloc returned a frame inside the reserved ACPI-reclaim range")
	}
}

func TestModulesAndKernelImageAreReservedUnconditionally(t *testing.T) {
	frames := pfa.New()
	frames.SetEntryPool(16)

	desc := &boot.Descriptor{
		MemoryMap: []boot.MemoryMapEntry{
			{Type: boot.RegionAvailable, Start: addr.PA(0x10_0000), Length: addr.MSize(0x100_0000)},
		},
		KernelImage: boot.MemoryMapEntry{Start: addr.PA(0x10_0000), Length: addr.MSize(0x1000)},
		Modules: []boot.MemoryMapEntry{
			{Start: addr.PA(0x20_0000), Length: addr.MSize(0x1000)},
		},
	}

	if err := Donate(frames, desc); err != nil {
		t.Fatalf("Donate: %v", err)
	}

	want := addr.MSize(0x100_0000 - 0x1000 - 0x1000)
	if got := frames.FreeMemorySize(); got != want {
		t.Fatalf("FreeMemorySize = 0x%x, want 0x%x", uint64(got), uint64(want))
	}
}
