package vmm

import (
	"context"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/nyxkernel/memcore/kernel/lock"
	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

// slotsPerDonation is the minimum number of extra arena slots one donation
// targets; the page order actually requested is rounded up from this so
// the donated page is large enough to back every existing slot plus the
// new ones (growInto refuses to shrink the arena).
const slotsPerDonation = 64

// defaultDonationOrder mirrors the original's DEFAULT_ORDER = 2, i.e. four
// pages; the donation path only requests a larger order than this when the
// arena being grown has outgrown what four pages of its slot size can hold.
const defaultDonationOrder = addr.MPageOrder(2)

// Donator grows the VME/VMO/VMP metadata pools when they cross their low
// watermark. It is a thin wrapper around the kernel
// AddressSpace's own allocator: growing a pool means allocating a fresh
// page through that same VMM, with CRITICAL set so the growth request
// itself never recurses into another donation, then reinterpreting that
// page's own bytes as the pool's new backing storage.
type Donator struct {
	kernel *AddressSpace
	pools *Pools

	// sharedLock is the SMM's lock, taken around each Grow{VME,VMO,VMP}
	// call since the arena being grown is shared by every address space.
	sharedLock *lock.IRQSave

	// resolve turns a VA this Donator just mapped into the live byte
	// view backing it, the same VA-to-bytes seam oa.VMMPageSource takes
	// a resolve function for (the kernel's direct map once paging is
	// live, or an mmap-backed resolver under a hosted test build).
	resolve func(addr.VA, addr.MSize) []byte
}

// NewDonator returns a Donator that grows pools by allocating pages from
// the kernel address space and resolving them to bytes via resolve.
func NewDonator(kernel *AddressSpace, pools *Pools, sharedLock *lock.IRQSave, resolve func(addr.VA, addr.MSize) []byte) *Donator {
	return &Donator{kernel: kernel, pools: pools, sharedLock: sharedLock, resolve: resolve}
}

// EnsureWatermarks checks all three pools and, for every one below its low
// watermark, donates a fresh page concurrently via an errgroup.Group: a
// bounded, cancellable, error-propagating background task in place of a
// bare goroutine fan-out. A critical caller that observes
// ErrEntryPoolRunOut before this runs fails immediately instead of waiting;
// this method is the non-critical refill path invoked out of band.
func (d *Donator) EnsureWatermarks(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if d.pools.VMEFree() < VMEWatermark.Low {
		g.Go(func() error {
			return d.donate(ctx, cap(d.pools.vmes), unsafe.Sizeof(vme{}), d.pools.GrowVME)
		})
	}
	if d.pools.VMOFree() < VMOWatermark.Low {
		g.Go(func() error {
			return d.donate(ctx, cap(d.pools.vmos), unsafe.Sizeof(vmo{}), d.pools.GrowVMO)
		})
	}
	if d.pools.VMPFree() < VMPWatermark.Low {
		g.Go(func() error {
			return d.donate(ctx, cap(d.pools.vmps), unsafe.Sizeof(vmp{}), d.pools.GrowVMP)
		})
	}

	return g.Wait()
}

// donate allocates a page large enough to hold currentCap+slotsPerDonation
// elemSize-sized slots, resolves it to bytes, and hands those bytes to
// grow — the arena's new storage is the donated page itself, not a slice
// the Go runtime allocated on this path.
func (d *Donator) donate(ctx context.Context, currentCap int, elemSize uintptr, grow func([]byte)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	need := uintptr(currentCap+slotsPerDonation) * elemSize
	order := defaultDonationOrder
	for uintptr(order.ToSize(addr.PageSize)) < need {
		order++
	}
	size := order.ToSize(addr.PageSize)

	va, err := d.kernel.AllocNonLinearPages(order, ptd.Data(), ptd.KERNEL|ptd.WIRED|ptd.CRITICAL)
	if err != nil {
		return err
	}
	backing := d.resolve(va, size)

	d.sharedLock.Lock()
	grow(backing)
	d.sharedLock.Unlock()
	return nil
}
