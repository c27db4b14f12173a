package oa

import "testing"

type widget struct {
	a, b uint64
	tag  byte
}

func TestPoolAllocFromEmptyFails(t *testing.T) {
	p := NewPool[widget]()
	if _, ok := p.Alloc(); ok {
		t.Fatal("expected Alloc to fail on an unprimed pool")
	}
}

func TestPoolAddPoolThenAllocExhausts(t *testing.T) {
	p := NewPool[widget]()
	backing := make([]byte, 8*int(p.SlotSize()))
	p.AddPool(backing)

	if got, want := p.Cap(), 8; got != want {
		t.Fatalf("Cap() = %d, want %d", got, want)
	}

	var objs []*widget
	for i := 0; i < 8; i++ {
		obj, ok := p.Alloc()
		if !ok {
			t.Fatalf("Alloc #%d failed before exhaustion", i)
		}
		objs = append(objs, obj)
	}
	if _, ok := p.Alloc(); ok {
		t.Fatal("expected Alloc to fail once the pool is exhausted")
	}
	if p.FreeCount() != 0 {
		t.Fatalf("FreeCount() = %d, want 0", p.FreeCount())
	}

	p.Free(objs[3])
	if p.FreeCount() != 1 {
		t.Fatalf("FreeCount() after one Free = %d, want 1", p.FreeCount())
	}
	if _, ok := p.Alloc(); !ok {
		t.Fatal("expected Alloc to succeed after a Free")
	}
}

func TestPoolAllocZeroesFreedStorage(t *testing.T) {
	p := NewPool[widget]()
	backing := make([]byte, 2*int(p.SlotSize()))
	p.AddPool(backing)

	obj, ok := p.Alloc()
	if !ok {
		t.Fatal("Alloc failed")
	}
	obj.a, obj.b, obj.tag = 0xdeadbeef, 0xcafef00d, 0x42
	p.Free(obj)

	reused, ok := p.Alloc()
	if !ok {
		t.Fatal("Alloc after Free failed")
	}
	if reused.a != 0 || reused.b != 0 || reused.tag != 0 {
		t.Fatalf("reused slot not zeroed: %+v", reused)
	}
}

func TestPoolFILODiscipline(t *testing.T) {
	p := NewPool[widget]()
	backing := make([]byte, 4*int(p.SlotSize()))
	p.AddPool(backing)

	a, _ := p.Alloc()
	b, _ := p.Alloc()
	p.Free(a)
	p.Free(b)

	// FILO: the most recently freed slot (b) must be the next one handed
	// out, ahead of a.
	first, _ := p.Alloc()
	if first != b {
		t.Fatalf("expected FILO reuse order to return b first")
	}
	second, _ := p.Alloc()
	if second != a {
		t.Fatalf("expected FILO reuse order to return a second")
	}
}
