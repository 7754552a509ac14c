package model

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexAndAttributesDeterministic(t *testing.T) {
	//** Arrange
	scenarios := [][]uint64{
		{1, 6, 6},
		{3, 3, 3},
		{20, 5, 10},
		{15, 7, 7},
		{40, 6, 6},
	}

	for _, scenario := range scenarios {
		sections, days, intervals := scenario[0], scenario[1], scenario[2]

		//** Act
		indexer := newIndexer(sections, days, intervals)
		indices := make([]uint64, 0, indexer.Cells())
		for section := range sections {
			for day := range days {
				for interval := range intervals {
					indices = append(indices, indexer.Index(section, day, interval))
				}
			}
		}

		//** Assert
		seen := make(map[uint64]bool)
		for _, index := range indices {
			assert.Less(t, index, indexer.Cells())
			assert.False(t, seen[index], "index %d handed out twice", index)
			seen[index] = true

			section, day, interval := indexer.Attributes(index)
			assert.Equal(t, index, indexer.Index(section, day, interval))
		}
		assert.Len(t, seen, int(sections*days*intervals))
	}
}

func TestIndexAndAttributesNonDeterministic(t *testing.T) {
	for range 10 {
		//** Arrange
		sections := uint64(rand.IntN(50) + 1)
		days := uint64(rand.IntN(7) + 1)
		intervals := uint64(rand.IntN(12) + 1)
		indexer := newIndexer(sections, days, intervals)

		for range 100 {
			section, day, interval := rand.Uint64N(sections), rand.Uint64N(days), rand.Uint64N(intervals)

			//** Act
			actualSection, actualDay, actualInterval := indexer.Attributes(indexer.Index(section, day, interval))

			//** Assert
			assert.Equal(t, section, actualSection)
			assert.Equal(t, day, actualDay)
			assert.Equal(t, interval, actualInterval)
		}
	}
}
