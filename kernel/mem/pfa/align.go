package pfa

import "github.com/nyxkernel/memcore/kernel/mem/addr"

// alignAddressAndSize widens [address, address+size) down to the nearest
// align boundary and grows the size to match, the same transform
// physical_memory_manager.rs::align_address_and_size performs before
// re-invoking define_used_memory with align_order=0.
func alignAddressAndSize(address addr.PA, size addr.MSize, alignOrder addr.MOrder) (addr.PA, addr.MSize) {
	alignSize := uint64(alignOrder.ToOffset())
	mask := ^(alignSize - 1)
	alignedAddress := uint64(address) & mask
	alignedSize := (uint64(size)+(uint64(address)-alignedAddress)-1)&mask + alignSize
	return addr.PA(alignedAddress), addr.MSize(alignedSize)
}

// alignWithinEntry finds the first address >= entry's start that is aligned
// to alignOrder and still leaves at least `size` bytes before the entry
// ends, shrinking the available window one alignSize step at a time.
// It returns ok=false if no aligned address within the entry can fit size.
func alignWithinEntry(entryStart addr.PA, entrySize addr.MSize, alignOrder addr.MOrder, size addr.MSize) (aligned addr.PA, ok bool) {
	if entryStart.IsZero() {
		if entrySize < size {
			return 0, false
		}
		return 0, true
	}

	alignSize := uint64(alignOrder.ToOffset())
	mask := ^(alignSize - 1)
	address := uint64(entryStart)

	alignedAddress := ((address - 1) & mask) + alignSize
	var available uint64
	if alignedAddress >= address {
		if alignedAddress-address > uint64(entrySize) {
			return addr.PA(alignedAddress), false
		}
		available = uint64(entrySize) - (alignedAddress - address)
	} else {
		available = uint64(entrySize) + (address - alignedAddress)
	}

	for alignedAddress < address {
		if available < alignSize {
			return addr.PA(alignedAddress), false
		}
		alignedAddress += alignSize
		available -= alignSize
	}

	if available < uint64(size) {
		return addr.PA(alignedAddress), false
	}
	return addr.PA(alignedAddress), true
}
