package structure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingFIFO(t *testing.T) {
	r := NewRing[int](8)

	for i := 1; i <= 5; i++ {
		slot := r.TryWrite()
		require.NotNil(t, slot)
		*slot = i
		r.CommitWrite()
	}
	assert.Equal(t, 5, r.Size())

	for i := 1; i <= 5; i++ {
		slot := r.TryRead()
		require.NotNil(t, slot)
		assert.Equal(t, i, *slot)
		r.CommitRead()
	}
	assert.Zero(t, r.Size())
	assert.Nil(t, r.TryRead())
}

func TestRingFullAndEmpty(t *testing.T) {
	r := NewRing[int](4)
	assert.Nil(t, r.TryRead())

	for i := 0; i < 4; i++ {
		slot := r.TryWrite()
		require.NotNil(t, slot)
		*slot = i
		r.CommitWrite()
	}
	assert.Nil(t, r.TryWrite())
	assert.Equal(t, 4, r.Size())
	assert.Equal(t, 4, r.Cap())

	// One read frees exactly one slot.
	require.NotNil(t, r.TryRead())
	r.CommitRead()
	require.NotNil(t, r.TryWrite())
}

func TestRingWrapAround(t *testing.T) {
	r := NewRing[int](4)

	for round := 0; round < 10; round++ {
		for i := 0; i < 3; i++ {
			slot := r.TryWrite()
			require.NotNil(t, slot)
			*slot = round*3 + i
			r.CommitWrite()
		}
		for i := 0; i < 3; i++ {
			slot := r.TryRead()
			require.NotNil(t, slot)
			assert.Equal(t, round*3+i, *slot)
			r.CommitRead()
		}
	}
}

func TestRingCapacityMustBePowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { NewRing[int](0) })
	assert.Panics(t, func() { NewRing[int](3) })
	assert.NotPanics(t, func() { NewRing[int](1) })
}

func TestRingConcurrentProducerConsumer(t *testing.T) {
	const total = 1 << 16
	r := NewRing[uint64](1024)

	done := make(chan struct{})
	go func() {
		defer close(done)
		var expected uint64
		for expected < total {
			slot := r.TryRead()
			if slot == nil {
				continue
			}
			if *slot != expected {
				t.Errorf("read %d, want %d", *slot, expected)
				return
			}
			r.CommitRead()
			expected++
		}
	}()

	for i := uint64(0); i < total; {
		slot := r.TryWrite()
		if slot == nil {
			continue
		}
		*slot = i
		r.CommitWrite()
		i++
	}
	<-done
}
