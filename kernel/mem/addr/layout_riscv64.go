//go:build riscv64

package addr

// Architecture-provided address layout constants ; see
// layout_amd64.go for the rationale behind keeping these as build-tagged
// constants rather than runtime configuration.
const (
	PageShift = 12
	PageSize = MSize(1) << PageShift
	PageMask = uint64(PageSize) - 1

	// HugePageSize is the large-page granule (a 2MiB megapage under Sv39).
	HugePageSize = MSize(1) << 21

	// Sv39-style 39-bit virtual address space.
	MaxVirtualAddress = VA(0x0000_003F_FFFF_FFFF)

	DirectMapBase = VA(0xFFFF_FFC0_0000_0000)
	DirectMapSize = MSize(0x0000_0040_0000_0000)

	MapWindowBase = VA(0xFFFF_FFD0_0000_0000)
	MapWindowSize = MSize(0x0000_0008_0000_0000)

	MallocWindowBase = VA(0xFFFF_FFD8_0000_0000)
	MallocWindowSize = MSize(0x0000_0008_0000_0000)

	UserStackWindowBase = VA(0x0000_0030_0000_0000)
	UserStackWindowSize = MSize(0x0000_000F_FFFF_F000)

	NeedCopyHighMemoryPageTable = true
)
