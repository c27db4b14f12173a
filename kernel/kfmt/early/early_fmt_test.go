package early

import (
	"testing"

	"github.com/nyxkernel/memcore/kernel/hal"
	"github.com/nyxkernel/memcore/kernel/mem/addr"
)

func TestPrintfFormatsAddrTypesDirectly(t *testing.T) {
	original := hal.ActiveTerminal
	fb := &hal.BufferConsole{}
	hal.ActiveTerminal = fb
	defer func() { hal.ActiveTerminal = original }()

	Printf("pa=%x va=%x size=%d", addr.PA(0x1000), addr.VA(0xFFFF_8000_0000_0000), addr.MSize(4096))

	if got, want := fb.String(), "pa=0x1000 va=0xffff800000000000 size=4096"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
