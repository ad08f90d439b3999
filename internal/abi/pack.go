// Package abi implements the packed pointer/length convention shared by
// scripts and hosts, and the guest-side linear memory allocator.
//
// Every value crossing the boundary is a JSON document addressed by a single
// i64: pointer in the high 32 bits, length in the low 32 bits.
package abi

import "fmt"

// PtrHighBits is the shift applied to the pointer half of a packed value.
const PtrHighBits = 32

// PackPtrLen packs a pointer and length into a single uint64.
// Panics if ptr is 0 and length > 0, indicating an invalid state.
func PackPtrLen(ptr, length uint32) uint64 {
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid pack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return (uint64(ptr) << PtrHighBits) | uint64(length)
}

// UnpackPtrLen unpacks a uint64 into its pointer and length.
// Panics if ptr is 0 and length > 0, indicating an invalid packed value.
func UnpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> PtrHighBits) //nolint:gosec // G115: packed format stores 32-bit values
	length = uint32(packed)             //nolint:gosec // G115: packed format stores 32-bit values
	if ptr == 0 && length > 0 {
		panic(fmt.Sprintf("abi: invalid unpack - null pointer (0x0) with non-zero length (%d)", length))
	}
	return ptr, length
}

// SplitPacked unpacks without validation. Hosts use it on values that come
// from untrusted guests and check the range against guest memory instead.
func SplitPacked(packed uint64) (ptr, length uint32) {
	return uint32(packed >> PtrHighBits), uint32(packed) //nolint:gosec // G115: packed format stores 32-bit values
}
