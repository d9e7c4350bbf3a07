package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalCost(t *testing.T) {
	s := Schedule{UnitPrice: 100}

	total, err := s.TotalCost(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), total)
}

func TestTotalCost_FreeMint(t *testing.T) {
	s := Schedule{UnitPrice: 0}
	total, err := s.TotalCost(50)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), total)
}

func TestTotalCost_Overflow(t *testing.T) {
	s := Schedule{UnitPrice: math.MaxUint64}
	_, err := s.TotalCost(2)
	require.ErrorIs(t, err, ErrCostOverflow)
}

func TestCovers(t *testing.T) {
	s := Schedule{UnitPrice: 100}

	assert.True(t, s.Covers(3, 300))
	assert.True(t, s.Covers(3, 301))
	assert.False(t, s.Covers(3, 299))
}

func TestCovers_OverflowNeverCovered(t *testing.T) {
	s := Schedule{UnitPrice: math.MaxUint64}
	assert.False(t, s.Covers(2, math.MaxUint64))
}
