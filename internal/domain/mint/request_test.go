package mint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func refs(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "ref"
	}
	return out
}

func TestValidate_OK(t *testing.T) {
	r := NewRequest("acct-1", 3, refs(3), 300)
	require.NoError(t, r.Validate())
}

func TestValidate_MaxBatchSizeIsLegal(t *testing.T) {
	r := NewRequest("acct-1", MaxBatchSize, refs(MaxBatchSize), 0)
	require.NoError(t, r.Validate())
}

func TestValidate_ZeroCount(t *testing.T) {
	r := NewRequest("acct-1", 0, nil, 0)
	require.ErrorIs(t, r.Validate(), ErrInvalidCount)
}

func TestValidate_NegativeCount(t *testing.T) {
	r := NewRequest("acct-1", -1, nil, 0)
	require.ErrorIs(t, r.Validate(), ErrInvalidCount)
}

func TestValidate_BatchTooLarge(t *testing.T) {
	r := NewRequest("acct-1", MaxBatchSize+1, refs(MaxBatchSize+1), 0)
	require.ErrorIs(t, r.Validate(), ErrBatchTooLarge)
}

func TestValidate_MetadataCountMismatch(t *testing.T) {
	r := NewRequest("acct-1", 3, refs(2), 0)
	require.ErrorIs(t, r.Validate(), ErrMetadataCountMismatch)
}

// 複数の不正が同時に成立する場合、先に定義された検査のエラーを返す。
func TestValidate_FirstFailureWins(t *testing.T) {
	// count=0 かつ metadataRefs が 2 件 → ErrInvalidCount が先
	r := NewRequest("acct-1", 0, refs(2), 0)
	require.ErrorIs(t, r.Validate(), ErrInvalidCount)

	// count=51 かつ refs が 1 件 → ErrBatchTooLarge が先
	r = NewRequest("acct-1", MaxBatchSize+1, refs(1), 0)
	require.ErrorIs(t, r.Validate(), ErrBatchTooLarge)
}

func TestNewRequest_TrimsRecipient(t *testing.T) {
	r := NewRequest("  acct-1  ", 1, refs(1), 0)
	assert.Equal(t, "acct-1", r.Recipient)
}

// 空文字・重複の metadataRef は構造検証では弾かない。
func TestValidate_AllowsEmptyAndDuplicateRefs(t *testing.T) {
	r := NewRequest("acct-1", 3, []string{"", "dup", "dup"}, 0)
	require.NoError(t, r.Validate())
}
