package ptd

import (
	"testing"

	"github.com/nyxkernel/memcore/kernel/mem/addr"
)

func TestValidateRejectsIOMapExecutable(t *testing.T) {
	perm := Permission{Readable: true, Executable: true}
	if err := Validate(perm, IOMap, addr.PageSize); err != ErrConflictingFlags {
		t.Fatalf("expected ErrConflictingFlags, got %v", err)
	}
}

func TestValidateRejectsKernelUserAccessible(t *testing.T) {
	perm := Permission{Readable: true, UserAccessible: true}
	if err := Validate(perm, KERNEL, addr.PageSize); err != ErrConflictingFlags {
		t.Fatalf("expected ErrConflictingFlags, got %v", err)
	}
}

func TestValidateRejectsDeviceMemoryHugeMisaligned(t *testing.T) {
	if err := Validate(Data(), DeviceMemory|AllowHuge, addr.PageSize); err != ErrConflictingFlags {
		t.Fatalf("expected ErrConflictingFlags, got %v", err)
	}
}

func TestValidateAcceptsDeviceMemoryHugeAligned(t *testing.T) {
	if err := Validate(Data(), DeviceMemory|AllowHuge, addr.HugePageSize); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestValidateAcceptsOrdinaryKernelData(t *testing.T) {
	if err := Validate(Data(), KERNEL|WIRED, addr.PageSize); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestValidateAcceptsUserReadOnly(t *testing.T) {
	perm := Permission{Readable: true, UserAccessible: true}
	if err := Validate(perm, USER, addr.PageSize); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}
