// Package bootmem implements the boot-time physical memory donation
// contract: every byte the firmware classified "available" must be
// donated to the PFA, every "ACPI-reclaim" byte is donated and then
// immediately marked reserved until the (out-of-scope) ACPI table parser
// runs, and the kernel image and boot modules are reserved
// unconditionally. The boot descriptor's own backing memory (including
// its ELF header and program-header buffers) is not reserved here. This
// package reproduces that two-phase donate/reserve sequence and does not
// itself parse ACPI tables.
package bootmem

import (
	"github.com/nyxkernel/memcore/kernel/boot"
	"github.com/nyxkernel/memcore/kernel/mem/pfa"
)

// Donate runs the boot-time donation sequence against frames:
//
// 1. every RegionAvailable and RegionACPIReclaim extent in desc.MemoryMap
// is freed with isInitializing=true;
// 2. every RegionACPIReclaim extent is then immediately reserved back out
// ;
// 3. desc.KernelImage and every entry in desc.Modules are reserved
// unconditionally, whether or not the firmware map described them.
//
// Donate must run exactly once, before any other caller touches frames.
func Donate(frames *pfa.PFA, desc *boot.Descriptor) error {
	var reclaim []boot.MemoryMapEntry

	for _, e := range desc.MemoryMap {
		switch e.Type {
		case boot.RegionAvailable:
			if err := frames.Free(e.Start, e.Length, true); err != nil {
				return err
			}
		case boot.RegionACPIReclaim:
			if err := frames.Free(e.Start, e.Length, true); err != nil {
				return err
			}
			reclaim = append(reclaim, e)
		}
	}

	for _, e := range reclaim {
		if err := frames.Reserve(e.Start, e.Length, 0); err != nil {
			return err
		}
	}

	if desc.KernelImage.Length != 0 {
		if err := frames.Reserve(desc.KernelImage.Start, desc.KernelImage.Length, 0); err != nil {
			return err
		}
	}

	for _, m := range desc.Modules {
		if err := frames.Reserve(m.Start, m.Length, 0); err != nil {
			return err
		}
	}

	return nil
}
