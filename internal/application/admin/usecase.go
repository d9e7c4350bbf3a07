// internal/application/admin/usecase.go
package admin

import (
	"context"
	"errors"
	"log"
	"strings"
)

// ============================================================
// 管理操作ユースケース
// ============================================================
//
// 台帳コア自体は「この呼び出し元に権限があるか」を知らない。
// 権限判定はこのホスト境界で済ませてからエンジンに委譲する。

var (
	ErrUnauthorized = errors.New("admin: unauthorized")
)

// Authority decides whether an account is the single designated
// administrative account.
type Authority interface {
	IsAdmin(accountID string) bool
}

// LedgerAdminPort は admin usecase から見た台帳側の管理操作ポートです。
// mint.Engine がこのインターフェースを実装する想定。
type LedgerAdminPort interface {
	SetUnitPrice(ctx context.Context, actor string, newPrice uint64) error
	SetMetadataBase(ctx context.Context, actor string, newBase string) error
	UnitPrice() uint64
	MetadataBase() string
}

type Usecase struct {
	authority Authority
	ledger    LedgerAdminPort
}

func NewUsecase(authority Authority, ledger LedgerAdminPort) *Usecase {
	return &Usecase{
		authority: authority,
		ledger:    ledger,
	}
}

// SetUnitPrice replaces the unit price. actor 以外の口座は必ず ErrUnauthorized。
func (u *Usecase) SetUnitPrice(ctx context.Context, actor string, newPrice uint64) error {
	if u == nil || u.ledger == nil {
		return errors.New("admin: usecase is not initialized")
	}
	actor = strings.TrimSpace(actor)
	if u.authority == nil || !u.authority.IsAdmin(actor) {
		log.Printf("[admin_usecase] SetUnitPrice denied actor=%q", actor)
		return ErrUnauthorized
	}
	return u.ledger.SetUnitPrice(ctx, actor, newPrice)
}

// SetMetadataBase replaces the shared metadata base reference.
func (u *Usecase) SetMetadataBase(ctx context.Context, actor string, newBase string) error {
	if u == nil || u.ledger == nil {
		return errors.New("admin: usecase is not initialized")
	}
	actor = strings.TrimSpace(actor)
	if u.authority == nil || !u.authority.IsAdmin(actor) {
		log.Printf("[admin_usecase] SetMetadataBase denied actor=%q", actor)
		return ErrUnauthorized
	}
	return u.ledger.SetMetadataBase(ctx, actor, newBase)
}

// Settings returns the currently effective admin-owned settings.
func (u *Usecase) Settings() (unitPrice uint64, metadataBase string) {
	if u == nil || u.ledger == nil {
		return 0, ""
	}
	return u.ledger.UnitPrice(), u.ledger.MetadataBase()
}

// ============================================================
// 既定の Authority 実装（単一の管理口座 ID と突き合わせるだけ）
// ============================================================

type SingleAccountAuthority struct {
	AdminAccountID string
}

func (a SingleAccountAuthority) IsAdmin(accountID string) bool {
	id := strings.TrimSpace(accountID)
	return id != "" && id == strings.TrimSpace(a.AdminAccountID)
}
