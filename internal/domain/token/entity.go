// internal/domain/token/entity.go
package token

import (
	"errors"
	"strconv"
	"strings"
)

// ID は発行済みトークンを一意に識別する番号です。
// 発番順に厳密に増加し、一度割り当てた番号は（トークンが後で破棄されても）再利用しません。
type ID uint64

// String returns the canonical decimal form (also used as the Firestore doc id).
func (id ID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseID parses the decimal form back into an ID. 0 is never a valid id.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || n == 0 {
		return 0, ErrInvalidTokenID
	}
	return ID(n), nil
}

// ------------------------------------------------------
// Entity: Binding (tokens テーブル / tokens コレクション 1 レコード)
// ------------------------------------------------------
//
// Binding は tokenId -> (owner, metadataRef) の対応 1 件を表します。
// metadataRef の設定は所有権の記録と同じ原子的単位で保存される前提。
type Binding struct {
	TokenID     ID     `json:"tokenId"`
	Owner       string `json:"owner"`
	MetadataRef string `json:"metadataRef"`
}

// ------------------------------------------------------
// Errors
// ------------------------------------------------------

var (
	ErrInvalidTokenID = errors.New("token: invalid tokenId")
	ErrInvalidOwner   = errors.New("token: invalid owner")
	ErrNotFound       = errors.New("token: not found")
	// 同じ tokenId が既に束縛済み。採番が正しければ起こり得ないが、
	// 検出した場合は握り潰さず必ず上位へ返す。
	ErrAlreadyBound = errors.New("token: tokenId already bound")
)

// ------------------------------------------------------
// Constructors
// ------------------------------------------------------

// NewBinding validates and normalizes a single binding.
// metadataRef は空文字・重複とも許容する（一意制約は tokenId のみ）。
func NewBinding(id ID, owner string, metadataRef string) (Binding, error) {
	if id == 0 {
		return Binding{}, ErrInvalidTokenID
	}
	o := strings.TrimSpace(owner)
	if o == "" {
		return Binding{}, ErrInvalidOwner
	}
	return Binding{
		TokenID:     id,
		Owner:       o,
		MetadataRef: metadataRef,
	}, nil
}

// ------------------------------------------------------
// Tokens DDL from domain
// ------------------------------------------------------

// TokensTableDDL defines the SQL for the tokens migration.
const TokensTableDDL = `
-- Migration: Initialize token ledger

BEGIN;

CREATE TABLE IF NOT EXISTS tokens (
  token_id     BIGINT      PRIMARY KEY,
  owner        TEXT        NOT NULL,
  metadata_ref TEXT        NOT NULL DEFAULT '',
  minted_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),

  CONSTRAINT chk_tokens_token_id_positive CHECK (token_id > 0),
  CONSTRAINT chk_tokens_owner_non_empty   CHECK (char_length(trim(owner)) > 0)
);

-- Useful indexes
CREATE INDEX IF NOT EXISTS idx_tokens_owner     ON tokens(owner);
CREATE INDEX IF NOT EXISTS idx_tokens_minted_at ON tokens(minted_at);

COMMIT;
`
