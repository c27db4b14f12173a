package addr

import "testing"

func TestToEndAddressIsInclusive(t *testing.T) {
	base := PA(0x1000)
	size := MSize(0x1000)
	end := size.ToEndAddress(base)
	if end != 0x1FFF {
		t.Fatalf("expected inclusive end 0x1fff, got 0x%x", uint64(end))
	}
	if got := SizeFromRange(base, end); got != size {
		t.Fatalf("round-trip SizeFromRange = %d, want %d", got, size)
	}
}

func TestOrderClampsAtMax(t *testing.T) {
	max := MOrder(11)
	huge := MSize(1) << 40
	if got := huge.ToOrder(&max); got != max {
		t.Fatalf("expected order to clamp at %d, got %d", max, got)
	}

	small := MSize(100)
	if got := small.ToOrder(&max); got != MOrder(7) { // 1<<7 = 128 >= 100
		t.Fatalf("expected order 7 for size 100, got %d", got)
	}
}

func TestIndexRoundTrip(t *testing.T) {
	pageSize := MSize(4096)
	idx := MSize(4096 * 3).ToIndex(pageSize)
	if idx != 3 {
		t.Fatalf("expected index 3, got %d", idx)
	}
	if off := idx.ToOffset(pageSize); off != MOffset(4096*3) {
		t.Fatalf("expected offset %d, got %d", 4096*3, off)
	}
}

func TestOrderToOffset(t *testing.T) {
	if got := MOrder(0).ToOffset(); got != 1 {
		t.Fatalf("expected order 0 to offset 1, got %d", got)
	}
	if got := MOrder(12).ToOffset(); got != PageSize {
		t.Fatalf("expected order %d to equal PageSize, got %d", PageShift, got)
	}
}

func TestDirectMapRoundTrip(t *testing.T) {
	pa := PA(0x1234_5000)
	va := ToDirectMap(pa)
	if va != DirectMapBase+VA(pa) {
		t.Fatalf("ToDirectMap = 0x%x, want DirectMapBase+pa", uint64(va))
	}
	if got := FromDirectMap(va); got != pa {
		t.Fatalf("FromDirectMap(ToDirectMap(pa)) = 0x%x, want 0x%x", uint64(got), uint64(pa))
	}
}
