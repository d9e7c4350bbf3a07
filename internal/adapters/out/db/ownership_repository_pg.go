// internal/adapters/out/db/ownership_repository_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	dbcommon "mintledger/internal/adapters/out/db/common"
	tokendom "mintledger/internal/domain/token"
)

// OwnershipRegistryPG implements mint.OwnershipRegistry on PostgreSQL.
// tokens テーブル（DDL は domain/token 側、cmd/ddlgen が出力）を使う。
type OwnershipRegistryPG struct {
	DB *sql.DB
}

func NewOwnershipRegistryPG(db *sql.DB) *OwnershipRegistryPG {
	return &OwnershipRegistryPG{DB: db}
}

// Bind inserts every binding in one transaction.
// 一意制約違反は token.ErrAlreadyBound に寄せる（採番衝突の検出）。
func (r *OwnershipRegistryPG) Bind(ctx context.Context, bindings []tokendom.Binding) error {
	if r == nil || r.DB == nil {
		return errors.New("pg: db is nil")
	}
	if len(bindings) == 0 {
		return nil
	}

	// ctx に外側の Tx があればそれに相乗りし、無ければ自前で張る
	if tx := dbcommon.TxFromCtx(ctx); tx != nil {
		return r.bindAll(ctx, tx, bindings)
	}

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("pg bind: begin: %w", err)
	}
	if err := r.bindAll(ctx, tx, bindings); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("pg bind: commit: %w", err)
	}
	return nil
}

func (r *OwnershipRegistryPG) bindAll(ctx context.Context, run dbcommon.Runner, bindings []tokendom.Binding) error {
	const q = `
INSERT INTO tokens (token_id, owner, metadata_ref)
VALUES ($1, $2, $3)
`
	for _, b := range bindings {
		if _, err := run.ExecContext(ctx, q, int64(b.TokenID), b.Owner, b.MetadataRef); err != nil {
			if dbcommon.IsUniqueViolation(err) {
				return tokendom.ErrAlreadyBound
			}
			return fmt.Errorf("pg bind tokenId=%d: %w", b.TokenID, err)
		}
	}
	return nil
}

// OwnerOf returns the owner bound to id.
func (r *OwnershipRegistryPG) OwnerOf(ctx context.Context, id tokendom.ID) (string, error) {
	if r == nil || r.DB == nil {
		return "", errors.New("pg: db is nil")
	}
	run := dbcommon.GetRunner(ctx, r.DB)

	const q = `SELECT owner FROM tokens WHERE token_id = $1`
	var owner string
	err := run.QueryRowContext(ctx, q, int64(id)).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", tokendom.ErrNotFound
		}
		return "", fmt.Errorf("pg ownerOf: %w", err)
	}
	return owner, nil
}

// TokensOf returns every tokenId bound to owner, in allocation order.
func (r *OwnershipRegistryPG) TokensOf(ctx context.Context, owner string) ([]tokendom.ID, error) {
	if r == nil || r.DB == nil {
		return nil, errors.New("pg: db is nil")
	}
	run := dbcommon.GetRunner(ctx, r.DB)

	const q = `SELECT token_id FROM tokens WHERE owner = $1 ORDER BY token_id ASC`
	rows, err := run.QueryContext(ctx, q, owner)
	if err != nil {
		return nil, fmt.Errorf("pg tokensOf: %w", err)
	}
	defer rows.Close()

	out := make([]tokendom.ID, 0, 16)
	for rows.Next() {
		var raw int64
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("pg tokensOf scan: %w", err)
		}
		if raw <= 0 {
			return nil, fmt.Errorf("pg tokensOf: non-positive token_id %d: %w", raw, tokendom.ErrInvalidTokenID)
		}
		out = append(out, tokendom.ID(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg tokensOf rows: %w", err)
	}
	return out, nil
}
