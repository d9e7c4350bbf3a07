package counter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tokendom "mintledger/internal/domain/token"
)

func TestNext_AdvancesByOne(t *testing.T) {
	c := New(0)
	require.Equal(t, tokendom.ID(0), c.Current())

	for want := uint64(1); want <= 5; want++ {
		id, err := c.Next()
		require.NoError(t, err)
		assert.Equal(t, tokendom.ID(want), id)
		assert.Equal(t, tokendom.ID(want), c.Current())
	}
}

func TestNext_ResumesFromLast(t *testing.T) {
	c := New(tokendom.ID(41))
	id, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, tokendom.ID(42), id)
}

func TestNext_FailsAtMaxInsteadOfWrapping(t *testing.T) {
	c := New(tokendom.ID(math.MaxUint64))

	id, err := c.Next()
	require.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, tokendom.ID(0), id)
	// 失敗しても値は動かない
	assert.Equal(t, tokendom.ID(math.MaxUint64), c.Current())
}

func TestRestore_RollsBackToSnapshot(t *testing.T) {
	c := New(tokendom.ID(10))
	snap := c.Snapshot()

	_, err := c.Next()
	require.NoError(t, err)
	_, err = c.Next()
	require.NoError(t, err)
	require.Equal(t, tokendom.ID(12), c.Current())

	require.NoError(t, c.Restore(snap))
	assert.Equal(t, tokendom.ID(10), c.Current())
}

func TestRestore_RejectsForwardRestore(t *testing.T) {
	c := New(tokendom.ID(10))
	err := c.Restore(tokendom.ID(11))
	require.ErrorIs(t, err, ErrRestoreForward)
	assert.Equal(t, tokendom.ID(10), c.Current())
}
