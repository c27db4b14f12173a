package oa

import "testing"

func TestPerCPUSlotsAreIndependent(t *testing.T) {
	pc := NewPerCPU([]PageSource{
		newFakePageSource(4096),
		newFakePageSource(4096),
	})
	if pc.NumCPU() != 2 {
		t.Fatalf("NumCPU() = %d, want 2", pc.NumCPU())
	}

	h0, h1 := pc.Heap(0), pc.Heap(1)
	if h0 == h1 {
		t.Fatal("expected distinct Heap instances per CPU")
	}

	p0, err := h0.Alloc(64)
	if err != nil {
		t.Fatalf("cpu0 Alloc: %v", err)
	}
	if err := h0.Free(p0, 64); err != nil {
		t.Fatalf("cpu0 Free: %v", err)
	}

	// Allocating on cpu1 must not touch cpu0's pool bookkeeping.
	fc0Before, _ := h0.FreeCount(64)
	if _, err := h1.Alloc(64); err != nil {
		t.Fatalf("cpu1 Alloc: %v", err)
	}
	fc0After, _ := h0.FreeCount(64)
	if fc0Before != fc0After {
		t.Fatalf("cpu0 FreeCount changed from a cpu1 allocation: before=%d after=%d", fc0Before, fc0After)
	}
}
