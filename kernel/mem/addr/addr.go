// Package addr defines distinct, non-interchangeable address and size
// newtypes: physical addresses, virtual addresses, byte sizes,
// page-granularity indices, and log2 orders are all represented as
// different Go types so that mixing a PA with a VA (or a byte offset with
// a page index) is a compile error, not a runtime bug.
//
// The only legitimate conversions across these boundaries — direct-map
// translation, "end address" derivation, order/offset/index arithmetic —
// are the named methods below. end_address is always inclusive
// (base + size - 1); this convention must never be mixed with exclusive-end
// arithmetic anywhere else in this module.
package addr

import (
	"fmt"
	"unsafe"
)

// PA is a physical address.
type PA uint64

// VA is a virtual address.
type VA uint64

// MSize is a byte size.
type MSize uint64

// MOffset is a byte offset, used for offsets measured relative to some base
// (e.g. a VME's memory_offset into its backing object).
type MOffset uint64

// MIndex is an index measured in PageSize units (a page number).
type MIndex uint64

// MOrder is a log2 byte-size order: 1<<MOrder is a size in bytes.
type MOrder uint8

// MPageOrder is a log2 page-count order: 1<<MPageOrder is a page count.
type MPageOrder uint8

// IsZero reports whether the address is the null address.
func (a PA) IsZero() bool { return a == 0 }

// IsZero reports whether the address is the null address.
func (a VA) IsZero() bool { return a == 0 }

// IsZero reports whether the size is zero.
func (s MSize) IsZero() bool { return s == 0 }

// IsZero reports whether the order is zero.
func (o MOrder) IsZero() bool { return o == 0 }

func (a PA) String() string { return fmt.Sprintf("PA(0x%x)", uint64(a)) }
func (a VA) String() string { return fmt.Sprintf("VA(0x%x)", uint64(a)) }

// AddSize returns the address advanced by size bytes.
func (a PA) AddSize(s MSize) PA { return a + PA(s) }

// AddSize returns the address advanced by size bytes.
func (a VA) AddSize(s MSize) VA { return a + VA(s) }

// SubPA returns the byte distance from b to a; a must be >= b.
func (a PA) SubPA(b PA) MSize { return MSize(a - b) }

// SubVA returns the byte distance from b to a; a must be >= b.
func (a VA) SubVA(b VA) MSize { return MSize(a - b) }

// ToEndAddress returns the inclusive end address of a size-byte range
// starting at base: base + size - 1. size must be non-zero.
func (s MSize) ToEndAddress(base PA) PA { return base + PA(s) - 1 }

// ToEndAddressVA returns the inclusive end address of a size-byte range
// starting at base: base + size - 1. size must be non-zero.
func (s MSize) ToEndAddressVA(base VA) VA { return base + VA(s) - 1 }

// SizeFromRange returns the size (in bytes) of the inclusive range
// [start, end]; end must be >= start.
func SizeFromRange(start, end PA) MSize { return MSize(end-start) + 1 }

// SizeFromRangeVA returns the size (in bytes) of the inclusive range
// [start, end]; end must be >= start.
func SizeFromRangeVA(start, end VA) MSize { return MSize(end-start) + 1 }

// ToOffset returns the byte size represented by this order: 1<<order.
func (o MOrder) ToOffset() MSize { return MSize(1) << o }

// ToPages returns the page count represented by this page order: 1<<order.
func (o MPageOrder) ToPages() uint64 { return uint64(1) << o }

// ToSize returns the byte size represented by this page order, i.e. the page
// count converted to bytes using the page size supplied by the caller
// (PageSize in the arch-specific layout files).
func (o MPageOrder) ToSize(pageSize MSize) MSize { return MSize(o.ToPages()) * pageSize }

// ToOrder returns the smallest MOrder such that 1<<order >= s, clamped to
// max if provided (the PFA clamps to its highest free-list bucket, 11).
func (s MSize) ToOrder(max *MOrder) MOrder {
	var order MOrder
	for (MSize(1) << order) < s {
		if max != nil && order >= *max {
			return *max
		}
		order++
	}
	if max != nil && order > *max {
		return *max
	}
	return order
}

// ToIndex converts a byte size to a page count (index), using the supplied
// page size. Matches 's MIndex ("in PAGE_SIZE units").
func (s MSize) ToIndex(pageSize MSize) MIndex {
	return MIndex((s + pageSize - 1) / pageSize)
}

// ToOffset converts a page index back to a byte offset, using the supplied
// page size.
func (i MIndex) ToOffset(pageSize MSize) MOffset { return MOffset(uint64(i) * uint64(pageSize)) }

// AlignOrderIsValidFor reports whether align fits within a single page, the
// invariant the original PFA's define_used_memory asserts
// (align_order <= PAGE_SHIFT) before delegating to the generic aligned path.
func AlignOrderIsValidFor(align MOrder, pageShift uint8) bool {
	return uint8(align) <= pageShift
}

// ToDirectMap and FromDirectMap are the only legitimate PA<->VA crossings
// allows ("the few legitimate conversions... are explicit
// named functions"): translating through the linear direct-map window
// (DirectMapBase, an arch-specific layout constant) instead of a per-use
// page-table mapping.
func ToDirectMap(pa PA) VA { return DirectMapBase + VA(pa) }

// FromDirectMap inverts ToDirectMap; va must lie within
// [DirectMapBase, DirectMapBase+DirectMapSize).
func FromDirectMap(va VA) PA { return PA(va - DirectMapBase) }

// BytesAt reinterprets a mapped virtual address as a live []byte of the
// given size. va must already have an installed translation (the caller's
// own mapping call, not this function, is what makes that true); this is
// the same raw uintptr-to-unsafe.Pointer reinterpretation gopher-os's own
// page-table walk code uses to turn an address into a typed view once
// paging is live, generalized to a byte slice instead of a page-table
// entry pointer.
func BytesAt(va VA, size MSize) []byte {
	if size.IsZero() {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(va))), int(size))
}
