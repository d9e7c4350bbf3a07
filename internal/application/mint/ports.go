// internal/application/mint/ports.go
package mint

import (
	"context"

	tokendom "mintledger/internal/domain/token"
)

// ============================================================
// OwnershipRegistry port
// ============================================================

// OwnershipRegistry は tokenId の所有権台帳（外部コラボレータ）への最小ポートです。
// Bind は all-or-nothing: 1 件でも失敗したらバッチ全体が未反映のままでなければならない。
// 部分的に束縛された状態を観測させないことがエンジン側のロールバック前提になる。
type OwnershipRegistry interface {
	Bind(ctx context.Context, bindings []tokendom.Binding) error
	OwnerOf(ctx context.Context, id tokendom.ID) (string, error)
	TokensOf(ctx context.Context, owner string) ([]tokendom.ID, error)
}

// ============================================================
// Settings / ledger state port
// ============================================================

// LedgerState は再起動をまたいで引き継ぐ台帳設定のスナップショットです。
type LedgerState struct {
	LastTokenID  tokendom.ID
	UnitPrice    uint64
	MetadataBase string
}

// SettingsRepository persists the ledger state (counter resume point,
// unit price, metadata base reference).
type SettingsRepository interface {
	Load(ctx context.Context) (LedgerState, error)
	SaveLastTokenID(ctx context.Context, id tokendom.ID) error
	SaveUnitPrice(ctx context.Context, price uint64) error
	SaveMetadataBase(ctx context.Context, base string) error
}
