// Package smm implements the System Memory Manager: a thin owner struct
// holding the singleton physical frame allocator and the three pools of VMM
// metadata (entries, objects, pages). It exists solely to break the
// chicken-and-egg of the VMM needing to allocate VMEs while holding its own
// lock, and to host the reserve-watermark table the VMM's VME/VMO/VMP
// metadata pools are replenished against, mirroring
// system_memory_manager.rs. The PFA's own entry pool is not covered by that
// table and is not grown here.
package smm

import (
	"context"

	"github.com/nyxkernel/memcore/kernel"
	"github.com/nyxkernel/memcore/kernel/errors"
	"github.com/nyxkernel/memcore/kernel/klog"
	"github.com/nyxkernel/memcore/kernel/lock"
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/pfa"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
	"github.com/nyxkernel/memcore/kernel/mem/vmm"
)

// Watermarks is the SMM's low/reserve pair for each metadata pool kind.
// Below Low, EnsureWatermarks schedules a donation; at or below Reserve,
// only a CRITICAL-flagged caller may still allocate.
type Watermarks struct {
	VME, VMO, VMP vmm.Watermark
}

// DefaultWatermarks is the 16/8 table every pool kind uses.
var DefaultWatermarks = Watermarks{
	VME: vmm.VMEWatermark,
	VMO: vmm.VMOWatermark,
	VMP: vmm.VMPWatermark,
}

// Config configures a freshly booted SMM's initial pool capacities and the
// kernel address space's page-table driver and address windows.
type Config struct {
	FrameEntryCap int
	VMECap, VMOCap, VMPCap int
	Driver ptd.Driver
	Windows vmm.Windows

	// Resolve turns a VA the Donator has just mapped into the live byte
	// view backing it (the kernel's direct map once paging is live, or
	// an mmap-backed resolver under a hosted test build), the same
	// VA-to-bytes seam oa.NewVMMPageSource takes as a constructor
	// argument.
	Resolve func(addr.VA, addr.MSize) []byte
}

// SMM is the process-wide singleton: one PFA, one set of VME/VMO/VMP pools,
// and the kernel's own address space built against them. User address
// spaces are constructed separately (NewUserAddressSpace) but share the
// same Frames and Pools.
type SMM struct {
	// lock guards every AddressSpace's access to Frames and Pools: both are
	// shared singletons, and every process's AddressSpace (kernel and user
	// alike) calls straight through to them under only its own per-instance
	// lock otherwise. Mirrors system_memory_manager.rs's single
	// `lock: IrqSaveSpinLockFlag` guarding the original PhysicalMemoryManager
	// and the three pool allocators together.
	lock lock.IRQSave

	Frames *pfa.PFA
	Pools *vmm.Pools
	Kernel *vmm.AddressSpace

	donator *vmm.Donator
}

// validate rejects a Config with a missing driver or a non-positive pool
// capacity: boot-time data-entry mistakes in the static table kmain builds,
// not conditions New's signature has any room to report past the caller.
func (cfg Config) validate() error {
	if cfg.Driver == nil {
		return errors.ErrInvalidParamValue
	}
	if cfg.FrameEntryCap <= 0 || cfg.VMECap <= 0 || cfg.VMOCap <= 0 || cfg.VMPCap <= 0 {
		return errors.ErrInvalidParamValue
	}
	if cfg.Resolve == nil {
		return errors.ErrInvalidParamValue
	}
	return nil
}

// New constructs an SMM: a PFA and VMM pools sized per cfg, and a kernel
// AddressSpace wired with a Donator that grows those pools by allocating
// pages from the kernel address space itself. An invalid cfg is a boot
// misconfiguration, not a recoverable runtime condition, so it is reported
// through kernel.Panic rather than an error return.
func New(cfg Config) *SMM {
	if err := cfg.validate(); err != nil {
		kernel.Panic(&kernel.Error{Module: "smm", Message: "invalid SMM config", Cause: err})
	}

	frames := pfa.New()
	frames.SetEntryPool(cfg.FrameEntryCap)

	pools := vmm.NewPools(cfg.VMECap, cfg.VMOCap, cfg.VMPCap)

	s := &SMM{Frames: frames, Pools: pools}
	kernelAS := vmm.NewAddressSpace(pools, frames, cfg.Driver, cfg.Windows, true, &s.lock)
	s.Kernel = kernelAS
	s.donator = vmm.NewDonator(kernelAS, pools, &s.lock, cfg.Resolve)
	kernelAS.SetDonator(s.donator)
	return s
}

// NewUserAddressSpace builds an address space for a user process against
// this SMM's shared Frames and Pools, using driver for its page tables. The
// kernel's Donator is not attached: user address spaces never grow the
// shared pools themselves, only the kernel's does. The returned AddressSpace
// shares this SMM's lock with every other address space, so concurrent
// Frames/Pools access across processes is serialized the same way as a
// single process's own operations.
func (s *SMM) NewUserAddressSpace(driver ptd.Driver, windows vmm.Windows) *vmm.AddressSpace {
	return vmm.NewAddressSpace(s.Pools, s.Frames, driver, windows, false, &s.lock)
}

// PoolOccupancy reports the current free-slot count of each metadata pool,
// for boot-time logging and maintenance scheduling.
func (s *SMM) PoolOccupancy() (vmeFree, vmoFree, vmpFree int) {
	return s.Pools.VMEFree(), s.Pools.VMOFree(), s.Pools.VMPFree()
}

// EnsureWatermarks runs a synchronous donation pass against any pool below
// its low watermark. Boot code calls this once the PFA has received its
// first memory-map donation; a periodic maintenance task calls it
// thereafter so pool growth happens off the allocation hot path.
func (s *SMM) EnsureWatermarks(ctx context.Context) error {
	vmeFree, vmoFree, vmpFree := s.PoolOccupancy()
	klog.Debug("smm: pool occupancy vme=%d vmo=%d vmp=%d", vmeFree, vmoFree, vmpFree)
	return s.donator.EnsureWatermarks(ctx)
}
