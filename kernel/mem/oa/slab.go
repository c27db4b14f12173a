package oa

import "github.com/nyxkernel/memcore/kernel/lock"

// slabCore is the shared alloc/free logic both slab lock flavors wrap:
// pop from the pool, and on exhaustion donate one DefaultOrder-sized
// region (1<<DefaultOrder pages) from the PageSource and retry once before
// surfacing ErrOutOfMemory.
type slabCore[T any] struct {
	pool *Pool[T]
	source PageSource
}

func newSlabCore[T any](source PageSource) *slabCore[T] {
	return &slabCore[T]{pool: NewPool[T](), source: source}
}

func (s *slabCore[T]) alloc() (*T, error) {
	if obj, ok := s.pool.Alloc(); ok {
		return obj, nil
	}
	region, err := s.source.AllocPages(DefaultOrder)
	if err != nil {
		return nil, ErrOutOfMemory
	}
	s.pool.AddPool(region)
	if obj, ok := s.pool.Alloc(); ok {
		return obj, nil
	}
	return nil, ErrOutOfMemory
}

func (s *slabCore[T]) free(obj *T) { s.pool.Free(obj) }

// LocalSlab is the per-CPU slab flavor. It must never be shared across
// CPUs; use GlobalSlab for cross-CPU pools.
type LocalSlab[T any] struct {
	mu lock.Local
	core *slabCore[T]
}

// NewLocalSlab returns a LocalSlab that donates pages from source when its
// pool runs dry.
func NewLocalSlab[T any](source PageSource) *LocalSlab[T] {
	return &LocalSlab[T]{core: newSlabCore[T](source)}
}

// Alloc returns a fresh *T, growing the backing pool by one
// DefaultOrder-sized region if necessary.
func (s *LocalSlab[T]) Alloc() (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.alloc()
}

// Free returns obj to the slab's pool.
func (s *LocalSlab[T]) Free(obj *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.free(obj)
}

// FreeCount reports the slab's currently unallocated slot count.
func (s *LocalSlab[T]) FreeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.pool.FreeCount()
}

// GlobalSlab is the cross-CPU slab flavor, used for pools more than one CPU
// may allocate from or free into concurrently.
type GlobalSlab[T any] struct {
	mu lock.IRQSave
	core *slabCore[T]
}

// NewGlobalSlab returns a GlobalSlab that donates pages from source when
// its pool runs dry.
func NewGlobalSlab[T any](source PageSource) *GlobalSlab[T] {
	return &GlobalSlab[T]{core: newSlabCore[T](source)}
}

// Alloc returns a fresh *T, growing the backing pool by one
// DefaultOrder-sized region if necessary.
func (s *GlobalSlab[T]) Alloc() (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.alloc()
}

// Free returns obj to the slab's pool.
func (s *GlobalSlab[T]) Free(obj *T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.core.free(obj)
}

// FreeCount reports the slab's currently unallocated slot count.
func (s *GlobalSlab[T]) FreeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.core.pool.FreeCount()
}
