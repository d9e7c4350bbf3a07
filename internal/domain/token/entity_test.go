package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID_RoundTrip(t *testing.T) {
	id, err := ParseID(ID(42).String())
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)
}

func TestParseID_Invalid(t *testing.T) {
	for _, s := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(s)
		assert.ErrorIs(t, err, ErrInvalidTokenID, "input=%q", s)
	}
}

func TestNewBinding(t *testing.T) {
	b, err := NewBinding(7, "  acct-1  ", "ipfs://x")
	require.NoError(t, err)
	assert.Equal(t, ID(7), b.TokenID)
	assert.Equal(t, "acct-1", b.Owner)
	assert.Equal(t, "ipfs://x", b.MetadataRef)
}

func TestNewBinding_ZeroID(t *testing.T) {
	_, err := NewBinding(0, "acct-1", "")
	require.ErrorIs(t, err, ErrInvalidTokenID)
}

func TestNewBinding_EmptyOwner(t *testing.T) {
	_, err := NewBinding(1, "   ", "")
	require.ErrorIs(t, err, ErrInvalidOwner)
}

func TestNewBinding_EmptyMetadataRefAllowed(t *testing.T) {
	b, err := NewBinding(1, "acct-1", "")
	require.NoError(t, err)
	assert.Equal(t, "", b.MetadataRef)
}
