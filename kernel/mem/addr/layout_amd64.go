//go:build amd64

package addr

// Architecture-provided address layout constants. These are
// compile-time, selected per target the same way the original
// constants_amd64.go selects PageShift/PageSize: there is no runtime
// configuration surface for them.
const (
	// PageShift is log2(PageSize).
	PageShift = 12

	// PageSize is the base page size in bytes.
	PageSize = MSize(1) << PageShift

	// PageMask masks the in-page offset bits of an address.
	PageMask = uint64(PageSize) - 1

	// HugePageSize is the large-page granule (a 2MiB PDE entry on amd64's
	// 4-level paging).
	HugePageSize = MSize(1) << 21

	// MaxVirtualAddress bounds user+kernel virtual address space on
	// amd64's canonical 48-bit layout.
	MaxVirtualAddress = VA(0x0000_7FFF_FFFF_FFFF)

	// DirectMapBase is the base of the linear kernel-virtual region that
	// maps all physical memory (the "direct map", glossary).
	DirectMapBase = VA(0xFFFF_8000_0000_0000)

	// DirectMapSize bounds the direct map window.
	DirectMapSize = MSize(0x0000_8000_0000_0000)

	// MapWindowBase/MapWindowSize bound the MAP_* window used for IO
	// mappings.
	MapWindowBase = VA(0xFFFF_A000_0000_0000)
	MapWindowSize = MSize(0x0000_1000_0000_0000)

	// MallocWindowBase/MallocWindowSize bound the MALLOC_* window used
	// for kernel heap pages.
	MallocWindowBase = VA(0xFFFF_B000_0000_0000)
	MallocWindowSize = MSize(0x0000_1000_0000_0000)

	// UserStackWindowBase/UserStackWindowSize bound the USER_STACK_*
	// window.
	UserStackWindowBase = VA(0x0000_7000_0000_0000)
	UserStackWindowSize = MSize(0x0000_0FFF_FFFF_F000)

	// NeedCopyHighMemoryPageTable indicates whether a user address space
	// must clone the kernel's high-half top-level page-table entries
	//. True on amd64's shared-PML4 model.
	NeedCopyHighMemoryPageTable = true
)
