//go:build arm64

package cpu

// EnableInterrupts enables interrupt handling (msr daifclr on arm64).
func EnableInterrupts()

// DisableInterrupts disables interrupt handling (msr daifset on arm64).
func DisableInterrupts()

// Halt stops instruction execution (wfi on arm64).
func Halt()

// FlushTLBEntry flushes a TLB entry for a particular virtual address (tlbi vae1).
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT sets the root translation table (ttbr0_el1) and flushes the TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address of the currently active translation table.
func ActivePDT() uintptr
