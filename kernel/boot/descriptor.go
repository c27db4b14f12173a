// Package boot defines the firmware-neutral boot descriptor: an ELF
// header buffer, the program-header array location, a classified
// physical memory map, and optional graphics/font descriptors. It is
// produced by an architecture-specific loader (a multiboot2 decoder on
// amd64, a UEFI memory-map walker on aarch64, an SBI probe on riscv64)
// that sits entirely outside this module's scope; this package only
// names the shape that loader hands the core.
package boot

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// RegionType classifies one physical memory map entry the firmware
// reported.
type RegionType int

const (
	RegionAvailable RegionType = iota
	RegionACPIReclaim
	RegionReserved
	RegionNVS
	RegionDefective
)

func (t RegionType) String() string {
	switch t {
	case RegionAvailable:
		return "available"
	case RegionACPIReclaim:
		return "acpi-reclaim"
	case RegionReserved:
		return "reserved"
	case RegionNVS:
		return "nvs"
	case RegionDefective:
		return "defective"
	default:
		return "unknown"
	}
}

// MemoryMapEntry is one physical extent from the firmware's memory map, a
// kernel image/module reservation, or any other fixed physical extent the
// loader already knows about.
type MemoryMapEntry struct {
	Type RegionType
	Start addr.PA
	Length addr.MSize
}

// GraphicsDescriptor optionally describes a pre-initialized linear
// framebuffer. This package never touches pixel data; the descriptor is
// only carried through for an out-of-scope console driver to consume.
type GraphicsDescriptor struct {
	FramebufferPA addr.PA
	Width, Height, Pitch uint32
	BitsPerPixel uint8
}

// Descriptor is the complete boot-time input to the memory core. Every
// field is populated by the architecture-specific loader before Kmain
// (or an equivalent entry point) is reached.
type Descriptor struct {
	// ELFHeader and ProgramHeaders are the raw kernel ELF header buffer
	// and program-header array the loader located, out of scope for
	// this module; bootmem.Donate does not reserve their backing
	// frames.
	ELFHeader []byte
	ProgramHeaders []byte

	// MemoryMap is the firmware-reported physical memory map.
	MemoryMap []MemoryMapEntry

	// KernelImage is the physical extent of the loaded kernel image
	// itself; reserved unconditionally.
	KernelImage MemoryMapEntry

	// Modules are boot-loader-provided module images (initrd-style
	// payloads); each is reserved unconditionally.
	Modules []MemoryMapEntry

	// Graphics is nil if the loader did not set up a framebuffer.
	Graphics *GraphicsDescriptor
}
