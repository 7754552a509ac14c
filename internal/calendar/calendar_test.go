package calendar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsable(t *testing.T) {
	assert.Equal(t, uint64(34), Usable())
	assert.True(t, Disabled(5, 4))
	assert.True(t, Disabled(5, 5))
	assert.False(t, Disabled(5, 3))
	assert.False(t, Disabled(4, 5))
}

func TestConflictingPairs(t *testing.T) {
	//** Act
	pairs := ConflictingPairs()

	//** Assert
	assert.ElementsMatch(t, [][2]uint64{
		{0, 1}, {0, 2},
		{1, 2}, {1, 3},
		{2, 3},
		{3, 4},
		{4, 5},
	}, pairs)
}

func TestLabPairs(t *testing.T) {
	for interval := range TotalIntervals() {
		pair, ok := PairOf(interval)
		assert.True(t, ok)
		assert.Contains(t, LabPairs[pair], interval)
	}

	pair, ok := IsLabPair(2, 3)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), pair)

	_, ok = IsLabPair(1, 2)
	assert.False(t, ok)

	assert.True(t, PairDisabled(5, 2))
	assert.False(t, PairDisabled(5, 1))
	assert.False(t, PairDisabled(0, 2))
}
