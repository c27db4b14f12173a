// Package kmain implements the kernel's single entry point: it wires the
// boot-time physical memory donation, the System Memory Manager, and the
// kernel address space's transition onto its own page table, the same
// sequence gopher-os's kmain.go runs before handing off to the rest of the
// kernel.
package kmain

import (
	"context"

	"github.com/nyxkernel/memcore/kernel"
	"github.com/nyxkernel/memcore/kernel/boot"
	"github.com/nyxkernel/memcore/kernel/klog"
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/bootmem"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
	"github.com/nyxkernel/memcore/kernel/mem/smm"
	"github.com/nyxkernel/memcore/kernel/mem/vmm"
)

var (
	errKmainReturned = &kernel.Error{Module: "kmain", Message: "Kmain returned"}
	errNoBootPort = &kernel.Error{Module: "kmain", Message: "no architecture boot port linked"}
)

// decodeBootDescriptor and newPageTableDriver are supplied by the
// architecture-specific loader (spec §1: the loader and the translation
// walk it drives are both out of this module's scope). A real boot image
// links a concrete architecture port that assigns these in an init()
// function, the same way kernel/cpu's bodiless functions are satisfied by
// an assembly trampoline rather than by code in this module.
var (
	decodeBootDescriptor func(multibootInfoPtr uintptr) *boot.Descriptor
	newPageTableDriver func() ptd.Driver
)

// entryFrameCap, vmeCap, vmoCap and vmpCap size the SMM's initial metadata
// pools before the first low-watermark donation grows them.
const (
	entryFrameCap = 256
	vmeCap = 256
	vmoCap = 256
	vmpCap = 1024
)

// Kmain is the only Go symbol rt0 initialization code calls into, after
// setting up the GDT/a minimal g0 struct running on the 4K bootstrap stack.
// rt0 passes the multiboot info payload's address; kernelStart/kernelEnd
// bound the loaded kernel image so it can be reserved unconditionally.
//
// Kmain is not expected to return. If it does, the rt0 code halts the CPU.
//
//go:noinline
func Kmain(multibootInfoPtr, kernelStart, kernelEnd uintptr) {
	klog.Info("kmain: boot started")

	if decodeBootDescriptor == nil || newPageTableDriver == nil {
		kernel.Panic(errNoBootPort)
	}

	desc := decodeBootDescriptor(multibootInfoPtr)
	desc.KernelImage = boot.MemoryMapEntry{
		Type: boot.RegionReserved,
		Start: addr.PA(kernelStart),
		Length: addr.MSize(kernelEnd - kernelStart),
	}

	driver := newPageTableDriver()
	sys := smm.New(smm.Config{
		FrameEntryCap: entryFrameCap,
		VMECap: vmeCap,
		VMOCap: vmoCap,
		VMPCap: vmpCap,
		Driver: driver,
		Windows: vmm.DefaultWindows(),
		Resolve: addr.BytesAt,
	})

	if err := bootmem.Donate(sys.Frames, desc); err != nil {
		kernel.Panic(&kernel.Error{Module: "kmain", Message: err.Error(), Cause: err})
	}
	klog.Info("kmain: donated %d bytes of physical memory, %d free", sys.Frames.MemorySize(), sys.Frames.FreeMemorySize())

	if err := sys.EnsureWatermarks(context.Background()); err != nil {
		kernel.Panic(&kernel.Error{Module: "kmain", Message: err.Error(), Cause: err})
	}

	if err := sys.Kernel.SetPagingTable(); err != nil {
		kernel.Panic(&kernel.Error{Module: "kmain", Message: err.Error(), Cause: err})
	}
	klog.Info("kmain: kernel address space active")

	// Use kernel.Panic instead of panic to prevent the compiler from
	// treating kernel.Panic as dead-code and eliminating it.
	kernel.Panic(errKmainReturned)
}
