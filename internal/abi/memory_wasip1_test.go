//go:build wasip1

package abi

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateDeallocate(t *testing.T) {
	FreeAllTracked()

	ptr := allocate(128)
	require.NotZero(t, ptr)

	count, total := Stats()
	assert.Equal(t, 1, count)
	assert.Equal(t, 128, total)

	deallocate(ptr, 128)
	count, total = Stats()
	assert.Zero(t, count)
	assert.Zero(t, total)
}

func TestAllocate_ZeroSize(t *testing.T) {
	assert.Zero(t, allocate(0))
}

func TestDeallocate_Idempotent(t *testing.T) {
	FreeAllTracked()

	ptr := allocate(64)
	deallocate(ptr, 64)
	deallocate(ptr, 64)

	_, total := Stats()
	assert.Zero(t, total)
}

func TestPtrFromBytes_RoundTrip(t *testing.T) {
	FreeAllTracked()

	data := []byte(`{"level":"info","message":"hi"}`)
	packed := PtrFromBytes(data)

	_, length := UnpackPtrLen(packed)
	assert.Equal(t, uint32(len(data)), length)
	assert.Equal(t, data, BytesFromPtr(packed))

	DeallocatePacked(packed)
	count, _ := Stats()
	assert.Zero(t, count)
}

func TestPtrFromBytes_Empty(t *testing.T) {
	assert.Zero(t, PtrFromBytes(nil))
	assert.Nil(t, BytesFromPtr(0))
	DeallocatePacked(0)
}

func TestConcurrency(t *testing.T) {
	FreeAllTracked()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			packed := PtrFromBytes([]byte("concurrent"))
			_ = BytesFromPtr(packed)
			DeallocatePacked(packed)
		}()
	}
	wg.Wait()

	count, _ := Stats()
	assert.Zero(t, count)
}

func TestConfigure_WithMaxTotalAllocations(t *testing.T) {
	FreeAllTracked()
	Configure(WithMaxTotalAllocations(1024))
	defer Configure(WithMaxTotalAllocations(DefaultMaxTotalAllocations))

	ptr := allocate(512)
	require.NotZero(t, ptr)
	deallocate(ptr, 512)

	assert.Panics(t, func() { allocate(2048) })

	Configure(WithMaxTotalAllocations(0))
	ptr = allocate(1024)
	require.NotZero(t, ptr)
	deallocate(ptr, 1024)
}
