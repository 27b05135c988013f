package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHash_DigitFold checks the base-37 fold over digits, least significant first.
func TestHash_DigitFold(t *testing.T) {
	s := NewAdjacencyStore(101, 0.7)
	// 3 -> 3*37+2 = 113 -> 113*37+1 = 4182; 4182 % 101 = 41
	assert.Equal(t, 41, s.hash(123))
	assert.Equal(t, 0, s.hash(0))
	assert.Equal(t, 7, s.hash(7))
}

// TestAdjacencyStore_Rehash forces growth and checks every key survives.
func TestAdjacencyStore_Rehash(t *testing.T) {
	s := NewAdjacencyStore(11, 0.6)
	for i := uint64(1); i <= 20; i++ {
		s.Put(i, NewNeighborSet())
		require.True(t, s.ContainsKey(i), "key %d just inserted", i)
	}
	// 11 -> 23 at the 7th insert, 23 -> 47 at the 14th.
	assert.Equal(t, 47, s.Capacity())
	assert.Equal(t, 20, s.Len())
	for i := uint64(1); i <= 20; i++ {
		assert.NotNil(t, s.Get(i), "key %d lost after rehash", i)
	}
	assert.False(t, s.ContainsKey(999))
	assert.Nil(t, s.Get(999))
}

// TestAdjacencyStore_LinearProbe places two colliding keys in adjacent slots.
func TestAdjacencyStore_LinearProbe(t *testing.T) {
	s := NewAdjacencyStore(11, 0.7)
	// hash(1) = 1 and hash(10) = (0*37+1) % 11 = 1
	require.Equal(t, s.hash(1), s.hash(10))

	a, b := NewNeighborSet(), NewNeighborSet()
	s.Put(1, a)
	s.Put(10, b)
	assert.Same(t, a, s.Get(1))
	assert.Same(t, b, s.Get(10))
	assert.Equal(t, uint64(10), s.keys[2], "second key probes to the next slot")
}

func TestAdjacencyStore_PutReplaces(t *testing.T) {
	s := NewAdjacencyStore(0, 0) // falls back to defaults
	require.Equal(t, DefaultCapacity, s.Capacity())

	first, second := NewNeighborSet(), NewNeighborSet()
	s.Put(5, first)
	s.Put(5, second)
	assert.Same(t, second, s.Get(5))
	assert.Equal(t, 1, s.Len())
}

func TestAdjacencyStore_Keys(t *testing.T) {
	s := NewAdjacencyStore(5, 0.5)
	want := []uint64{3, 14, 15, 92, 65, 35}
	for _, k := range want {
		s.Put(k, NewNeighborSet())
	}
	assert.ElementsMatch(t, want, s.Keys())
	assert.Len(t, s.Keys(), s.Len())
}
