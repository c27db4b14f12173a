//go:build riscv64

package cpu

// EnableInterrupts enables interrupt handling (csrsi sstatus, SIE).
func EnableInterrupts()

// DisableInterrupts disables interrupt handling (csrci sstatus, SIE).
func DisableInterrupts()

// Halt stops instruction execution (wfi on riscv64).
func Halt()

// FlushTLBEntry flushes a TLB entry for a particular virtual address (sfence.vma).
func FlushTLBEntry(virtAddr uintptr)

// SwitchPDT sets the root page table (satp) and flushes the TLB.
func SwitchPDT(pdtPhysAddr uintptr)

// ActivePDT returns the physical address of the currently active page table.
func ActivePDT() uintptr
