package vmm

import (
	"unsafe"

	"github.com/nyxkernel/memcore/kernel/mem/addr"
	"github.com/nyxkernel/memcore/kernel/mem/ptd"
)

const nilHandle int32 = -1

// VMPStatus is the lifecycle state of a single backed page.
type VMPStatus int

const (
	StatusInactive VMPStatus = iota
	StatusActive
	StatusUnswappable
	StatusFree
)

// vmp is one physical binding for a page of a VMO.
type vmp struct {
	enabled bool
	pIndex addr.MIndex
	pa addr.PA
	status VMPStatus
	next int32 // sorted by pIndex within a VMO
}

// vmo is a Virtual Memory Object: either disabled (object == nilHandle in
// the owning VME) or a sorted list of vmp handles keyed by pIndex. shared
// VMOs are pointed at by more than one VME and carry a reference count.
type vmo struct {
	enabled bool
	shared bool
	refCount int32
	head int32 // first vmp handle, nilHandle if empty
}

// vme is a Virtual Memory Entry: a single contiguous reservation in one
// address space's VME list.
type vme struct {
	enabled bool

	startVA addr.VA
	endVA addr.VA // inclusive
	perm ptd.Permission
	opt ptd.Option
	memOffset addr.MOffset

	object int32 // vmo handle, nilHandle if unbacked

	prev, next int32 // address-ordered list within the owning AddressSpace
}

func (e *vme) size() addr.MSize { return addr.SizeFromRangeVA(e.startVA, e.endVA) }

// Pools is the arena of VME/VMO/VMP metadata shared by every address space
// in the system. Allocation never grows
// the underlying slices on the hot path; Grow* is called out-of-band by the
// donation worker (donation.go) when a low watermark is crossed.
type Pools struct {
	vmes []vme
	vmos []vmo
	vmps []vmp
}

// NewPools returns a Pools with the given initial per-kind capacity.
func NewPools(vmeCap, vmoCap, vmpCap int) *Pools {
	return &Pools{
		vmes: make([]vme, 0, vmeCap),
		vmos: make([]vmo, 0, vmoCap),
		vmps: make([]vmp, 0, vmpCap),
	}
}

func allocSlot[T any](slice []T, zero T) ([]T, int32, bool) {
	if cap(slice) == len(slice) {
		return slice, nilHandle, false
	}
	slice = append(slice, zero)
	return slice, int32(len(slice) - 1), true
}

func (p *Pools) allocVME() (int32, bool) {
	for i := range p.vmes {
		if !p.vmes[i].enabled {
			p.vmes[i] = vme{enabled: true, prev: nilHandle, next: nilHandle, object: nilHandle}
			return int32(i), true
		}
	}
	var ok bool
	var h int32
	p.vmes, h, ok = allocSlot(p.vmes, vme{})
	if !ok {
		return nilHandle, false
	}
	p.vmes[h] = vme{enabled: true, prev: nilHandle, next: nilHandle, object: nilHandle}
	return h, true
}

func (p *Pools) freeVME(h int32) { p.vmes[h] = vme{} }

func (p *Pools) allocVMO() (int32, bool) {
	for i := range p.vmos {
		if !p.vmos[i].enabled {
			p.vmos[i] = vmo{enabled: true, head: nilHandle}
			return int32(i), true
		}
	}
	var ok bool
	var h int32
	p.vmos, h, ok = allocSlot(p.vmos, vmo{})
	if !ok {
		return nilHandle, false
	}
	p.vmos[h] = vmo{enabled: true, head: nilHandle}
	return h, true
}

func (p *Pools) freeVMO(h int32) { p.vmos[h] = vmo{} }

func (p *Pools) allocVMP() (int32, bool) {
	for i := range p.vmps {
		if !p.vmps[i].enabled {
			p.vmps[i] = vmp{enabled: true, next: nilHandle}
			return int32(i), true
		}
	}
	var ok bool
	var h int32
	p.vmps, h, ok = allocSlot(p.vmps, vmp{})
	if !ok {
		return nilHandle, false
	}
	p.vmps[h] = vmp{enabled: true, next: nilHandle}
	return h, true
}

func (p *Pools) freeVMP(h int32) { p.vmps[h] = vmp{} }

// GrowVME, GrowVMO and GrowVMP replace each arena's backing storage with
// backing, a byte buffer resolved from a page the donation worker just
// obtained via AllocNonLinearPages, copying every existing slot across.
// The donated page's own memory is the new array's storage from this
// point on; nothing here calls into the Go runtime's slice allocator.
func (p *Pools) GrowVME(backing []byte) { p.vmes = growInto(p.vmes, backing) }
func (p *Pools) GrowVMO(backing []byte) { p.vmos = growInto(p.vmos, backing) }
func (p *Pools) GrowVMP(backing []byte) { p.vmps = growInto(p.vmps, backing) }

// bytesToSlots reinterprets a raw byte buffer as a slice of T, the same
// unsafe reinterpretation kernel/mem/oa.Pool[T] uses to thread its free
// list through donated page storage rather than Go-runtime-allocated
// memory.
func bytesToSlots[T any](backing []byte) []T {
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 || uintptr(len(backing)) < size {
		return nil
	}
	n := uintptr(len(backing)) / size
	return unsafe.Slice((*T)(unsafe.Pointer(&backing[0])), int(n))
}

// growInto reinterprets backing as storage for T and copies s's existing
// slots into it. If backing is too small to hold every existing slot
// (the donation sizing in donation.go undersized the request), s is
// returned unchanged rather than silently dropping live entries.
func growInto[T any](s []T, backing []byte) []T {
	grown := bytesToSlots[T](backing)
	if len(grown) < len(s) {
		return s
	}
	n := copy(grown, s)
	return grown[:n]
}

// Watermark reports low/reserve occupancy for one arena kind, used by the
// donation worker to decide whether to schedule a refill.
type Watermark struct {
	Low int
	Reserve int
}

var (
	VMEWatermark = Watermark{Low: 16, Reserve: 8}
	VMOWatermark = Watermark{Low: 16, Reserve: 8}
	VMPWatermark = Watermark{Low: 16, Reserve: 8}
)

func freeCount[T any](slice []T, enabled func(*T) bool) int {
	free := cap(slice) - len(slice)
	for i := range slice {
		if !enabled(&slice[i]) {
			free++
		}
	}
	return free
}

// VMEFree, VMOFree and VMPFree report the number of unused slots in each
// arena (allocated-but-disabled slots, plus unused capacity).
func (p *Pools) VMEFree() int { return freeCount(p.vmes, func(e *vme) bool { return e.enabled }) }
func (p *Pools) VMOFree() int { return freeCount(p.vmos, func(o *vmo) bool { return o.enabled }) }
func (p *Pools) VMPFree() int { return freeCount(p.vmps, func(g *vmp) bool { return g.enabled }) }

// reserveOK reports whether a pool with the given free-slot count may still
// be allocated from under opt. A non-CRITICAL caller is refused once free
// drops to or below the watermark's reserve line, leaving that margin for
// CRITICAL callers only.
func reserveOK(free int, wm Watermark, opt ptd.Option) bool {
	if opt&ptd.CRITICAL != 0 {
		return free > 0
	}
	return free > wm.Reserve
}

// allocVMEGuarded, allocVMOGuarded and allocVMPGuarded are allocVME/allocVMO/
// allocVMP with the reserve-watermark check applied first.
func (p *Pools) allocVMEGuarded(opt ptd.Option) (int32, bool) {
	if !reserveOK(p.VMEFree(), VMEWatermark, opt) {
		return nilHandle, false
	}
	return p.allocVME()
}

func (p *Pools) allocVMOGuarded(opt ptd.Option) (int32, bool) {
	if !reserveOK(p.VMOFree(), VMOWatermark, opt) {
		return nilHandle, false
	}
	return p.allocVMO()
}

func (p *Pools) allocVMPGuarded(opt ptd.Option) (int32, bool) {
	if !reserveOK(p.VMPFree(), VMPWatermark, opt) {
		return nilHandle, false
	}
	return p.allocVMP()
}
