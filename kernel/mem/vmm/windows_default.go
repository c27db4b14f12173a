package vmm

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// DefaultWindows builds the Windows triple from this architecture's
// layout constants (kernel/mem/addr's build-tag-gated constants file).
func DefaultWindows() Windows {
	return Windows{
		Map:       Window{Base: addr.MapWindowBase, Size: addr.MapWindowSize},
		Malloc:    Window{Base: addr.MallocWindowBase, Size: addr.MallocWindowSize},
		UserStack: Window{Base: addr.UserStackWindowBase, Size: addr.UserStackWindowSize},
	}
}
