package vmm

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// Window is an architecture-provided address range a particular allocation
// purpose is confined to.
type Window struct {
	Base addr.VA
	Size addr.MSize
}

func (w Window) end() addr.VA { return w.Size.ToEndAddressVA(w.Base) }

// Purpose selects which architecture window find_usable_memory_area
// confines its search to.
type Purpose int

const (
	PurposeMap Purpose = iota
	PurposeMalloc
	PurposeUserStack
)

// Windows bundles the three purpose-keyed windows an AddressSpace searches,
// sourced from the architecture's layout constants (kernel/mem/addr's
// layout_*.go files).
type Windows struct {
	Map Window
	Malloc Window
	UserStack Window
}

func (w Windows) forPurpose(p Purpose) Window {
	switch p {
	case PurposeMap:
		return w.Map
	case PurposeUserStack:
		return w.UserStack
	default:
		return w.Malloc
	}
}
