package oa

import "testing"

func TestHeapRoundsUpToSizeClass(t *testing.T) {
	cases := []struct {
		request int
		want    int
	}{
		{1, 64}, {64, 64}, {65, 128}, {100, 128},
		{900, 1024}, {4096, 4096},
	}
	h := NewHeap(newFakePageSource(4096))
	for _, c := range cases {
		idx, err := classIndex(c.request)
		if err != nil {
			t.Fatalf("classIndex(%d): %v", c.request, err)
		}
		if classSizes[idx] != c.want {
			t.Fatalf("classIndex(%d) -> class %d, want %d", c.request, classSizes[idx], c.want)
		}
	}
	if _, err := h.Alloc(4097); err != ErrInvalidSize {
		t.Fatalf("expected ErrInvalidSize for a >4096 request, got %v", err)
	}
	if _, err := h.Alloc(0); err != ErrInvalidSize {
		t.Fatalf("expected ErrInvalidSize for a zero-size request, got %v", err)
	}
}

func TestHeapAllocFreeRoundTrip(t *testing.T) {
	h := NewHeap(newFakePageSource(4096))

	p, err := h.Alloc(200)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	before, err := h.FreeCount(200)
	if err != nil {
		t.Fatalf("FreeCount: %v", err)
	}
	if err := h.Free(p, 200); err != nil {
		t.Fatalf("Free: %v", err)
	}
	after, err := h.FreeCount(200)
	if err != nil {
		t.Fatalf("FreeCount: %v", err)
	}
	if after != before+1 {
		t.Fatalf("FreeCount after Free = %d, want %d", after, before+1)
	}
}

type point struct{ x, y int64 }

func TestKMallocInitializesAndFrees(t *testing.T) {
	h := NewHeap(newFakePageSource(4096))

	p, err := KMalloc(h, point{x: 3, y: 4})
	if err != nil {
		t.Fatalf("KMalloc: %v", err)
	}
	if p.x != 3 || p.y != 4 {
		t.Fatalf("KMalloc did not initialize object: %+v", p)
	}
	if err := KFree(h, p); err != nil {
		t.Fatalf("KFree: %v", err)
	}
}

func TestKMallocRejectsOversizedType(t *testing.T) {
	type tooBig [MaxHeapAllocSize + 1]byte
	h := NewHeap(newFakePageSource(4096))
	var zero tooBig
	if _, err := KMalloc(h, zero); err != ErrInvalidSize {
		t.Fatalf("expected ErrInvalidSize, got %v", err)
	}
}

func TestHeapClassesAreIndependent(t *testing.T) {
	h := NewHeap(newFakePageSource(4096))
	small, err := h.Alloc(64)
	if err != nil {
		t.Fatalf("Alloc(64): %v", err)
	}
	large, err := h.Alloc(4096)
	if err != nil {
		t.Fatalf("Alloc(4096): %v", err)
	}
	if uintptr(small) == uintptr(large) {
		t.Fatal("expected distinct buckets to hand out distinct storage")
	}
}
