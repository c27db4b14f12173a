package oa

import "unsafe"

// classSizes are the seven kmalloc size classes: a request is rounded up to
// the smallest class that fits it; anything larger than the last class is
// a contract violation the caller must route through page allocation
// directly instead.
var classSizes = [7]int{64, 128, 256, 512, 1024, 2048, 4096}

// MaxHeapAllocSize is the largest size Heap.Alloc will serve.
const MaxHeapAllocSize = 4096

type (
	size64 [64]byte
	size128 [128]byte
	size256 [256]byte
	size512 [512]byte
	size1024 [1024]byte
	size2048 [2048]byte
	size4096 [4096]byte
)

// classBucket erases a GlobalSlab[T]'s type parameter so Heap can hold all
// seven behind one array.
type classBucket interface {
	allocBytes() (unsafe.Pointer, error)
	freeBytes(unsafe.Pointer)
	freeCount() int
}

type slabBucket[T any] struct{ slab *GlobalSlab[T] }

func (b *slabBucket[T]) allocBytes() (unsafe.Pointer, error) {
	obj, err := b.slab.Alloc()
	if err != nil {
		return nil, err
	}
	return unsafe.Pointer(obj), nil
}

func (b *slabBucket[T]) freeBytes(p unsafe.Pointer) { b.slab.Free((*T)(p)) }
func (b *slabBucket[T]) freeCount() int { return b.slab.FreeCount() }

// Heap is the kernel malloc: seven fixed size-class buckets, each a
// GlobalSlab (cross-CPU capable; a per-CPU heap wraps one Heap per CPU
// instead of sharing locks, see percpu.go). Requests over
// MaxHeapAllocSize are rejected with ErrInvalidSize rather than served.
type Heap struct {
	buckets [7]classBucket
}

// NewHeap constructs a Heap whose seven buckets all grow from the same
// PageSource on exhaustion.
func NewHeap(source PageSource) *Heap {
	return &Heap{buckets: [7]classBucket{
			&slabBucket[size64]{slab: NewGlobalSlab[size64](source)},
			&slabBucket[size128]{slab: NewGlobalSlab[size128](source)},
			&slabBucket[size256]{slab: NewGlobalSlab[size256](source)},
			&slabBucket[size512]{slab: NewGlobalSlab[size512](source)},
			&slabBucket[size1024]{slab: NewGlobalSlab[size1024](source)},
			&slabBucket[size2048]{slab: NewGlobalSlab[size2048](source)},
			&slabBucket[size4096]{slab: NewGlobalSlab[size4096](source)},
	}}
}

func classIndex(size int) (int, error) {
	if size <= 0 || size > MaxHeapAllocSize {
		return 0, ErrInvalidSize
	}
	for i, s := range classSizes {
		if size <= s {
			return i, nil
		}
	}
	return 0, ErrInvalidSize
}

// Alloc returns size bytes rounded up to the next size class. Requests
// over MaxHeapAllocSize return ErrInvalidSize.
func (h *Heap) Alloc(size int) (unsafe.Pointer, error) {
	idx, err := classIndex(size)
	if err != nil {
		return nil, err
	}
	return h.buckets[idx].allocBytes()
}

// Free releases a pointer previously returned by Alloc(size). Passing a
// size that does not match the original allocation is a contract violation
// by the caller and is not detected: p is pushed onto whichever bucket
// size maps to.
func (h *Heap) Free(p unsafe.Pointer, size int) error {
	idx, err := classIndex(size)
	if err != nil {
		return err
	}
	h.buckets[idx].freeBytes(p)
	return nil
}

// FreeCount reports the unallocated slot count of the bucket that serves
// size, for diagnostics.
func (h *Heap) FreeCount(size int) (int, error) {
	idx, err := classIndex(size)
	if err != nil {
		return 0, err
	}
	return h.buckets[idx].freeCount(), nil
}

// KMalloc allocates room for a T and initializes it to initial.
// sizeof(T) must not exceed MaxHeapAllocSize.
func KMalloc[T any](h *Heap, initial T) (*T, error) {
	p, err := h.Alloc(int(unsafe.Sizeof(initial)))
	if err != nil {
		return nil, err
	}
	obj := (*T)(p)
	*obj = initial
	return obj, nil
}

// KFree releases an object obtained from KMalloc.
func KFree[T any](h *Heap, obj *T) error {
	var zero T
	return h.Free(unsafe.Pointer(obj), int(unsafe.Sizeof(zero)))
}
