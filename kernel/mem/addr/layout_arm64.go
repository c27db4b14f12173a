//go:build arm64

package addr

// Architecture-provided address layout constants ; see
// layout_amd64.go for the rationale behind keeping these as build-tagged
// constants rather than runtime configuration.
const (
	PageShift = 12
	PageSize = MSize(1) << PageShift
	PageMask = uint64(PageSize) - 1

	// HugePageSize is the large-page granule (a 2MiB block entry under a
	// 4KiB-granule translation table).
	HugePageSize = MSize(1) << 21

	// aarch64 splits the address space across TTBR0 (user) and TTBR1
	// (kernel) rather than sharing one top-level table, so unlike amd64
	// the kernel's high half does not need to be spliced into every new
	// user address space.
	MaxVirtualAddress = VA(0x0000_FFFF_FFFF_FFFF)

	DirectMapBase = VA(0xFFFF_0000_0000_0000)
	DirectMapSize = MSize(0x0000_8000_0000_0000)

	MapWindowBase = VA(0xFFFF_2000_0000_0000)
	MapWindowSize = MSize(0x0000_1000_0000_0000)

	MallocWindowBase = VA(0xFFFF_3000_0000_0000)
	MallocWindowSize = MSize(0x0000_1000_0000_0000)

	UserStackWindowBase = VA(0x0000_7000_0000_0000)
	UserStackWindowSize = MSize(0x0000_0FFF_FFFF_F000)

	NeedCopyHighMemoryPageTable = false
)
