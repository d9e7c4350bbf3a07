// internal/adapters/out/firestore/settings_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	mintapp "mintledger/internal/application/mint"
	tokendom "mintledger/internal/domain/token"
)

const (
	settingsCollection = "systemConfig"
	settingsDoc        = "ledger"
)

// SettingsRepositoryFS implements mint.SettingsRepository using Firestore.
// systemConfig/ledger の 1 ドキュメントに台帳設定をまとめて持つ:
//
//   - lastTokenId  : int64  （採番の再開位置。0 = 未割り当て）
//   - unitPrice    : int64
//   - metadataBase : string
type SettingsRepositoryFS struct {
	Client *firestore.Client
}

func NewSettingsRepositoryFS(client *firestore.Client) *SettingsRepositoryFS {
	return &SettingsRepositoryFS{Client: client}
}

func (r *SettingsRepositoryFS) docRef() *firestore.DocumentRef {
	return r.Client.Collection(settingsCollection).Doc(settingsDoc)
}

// Load reads the persisted ledger state. ドキュメントが無ければゼロ値で開始する
// （新規デプロイの初回起動を設定作業なしで通すため）。
func (r *SettingsRepositoryFS) Load(ctx context.Context) (mintapp.LedgerState, error) {
	if r == nil || r.Client == nil {
		return mintapp.LedgerState{}, errors.New("firestore client is nil")
	}

	snap, err := r.docRef().Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			log.Printf("[settings_fs] no ledger settings doc; starting from zero state")
			return mintapp.LedgerState{}, nil
		}
		return mintapp.LedgerState{}, fmt.Errorf("firestore settings load: %w", err)
	}

	var raw struct {
		LastTokenID  int64  `firestore:"lastTokenId"`
		UnitPrice    int64  `firestore:"unitPrice"`
		MetadataBase string `firestore:"metadataBase"`
	}
	if err := snap.DataTo(&raw); err != nil {
		return mintapp.LedgerState{}, fmt.Errorf("firestore settings decode: %w", err)
	}
	if raw.LastTokenID < 0 || raw.UnitPrice < 0 {
		return mintapp.LedgerState{}, fmt.Errorf("firestore settings decode: negative value lastTokenId=%d unitPrice=%d", raw.LastTokenID, raw.UnitPrice)
	}

	return mintapp.LedgerState{
		LastTokenID:  tokendom.ID(raw.LastTokenID),
		UnitPrice:    uint64(raw.UnitPrice),
		MetadataBase: raw.MetadataBase,
	}, nil
}

func (r *SettingsRepositoryFS) SaveLastTokenID(ctx context.Context, id tokendom.ID) error {
	if r == nil || r.Client == nil {
		return errors.New("firestore client is nil")
	}
	_, err := r.docRef().Set(ctx, map[string]interface{}{
		"lastTokenId": int64(id),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore settings save lastTokenId: %w", err)
	}
	return nil
}

func (r *SettingsRepositoryFS) SaveUnitPrice(ctx context.Context, price uint64) error {
	if r == nil || r.Client == nil {
		return errors.New("firestore client is nil")
	}
	_, err := r.docRef().Set(ctx, map[string]interface{}{
		"unitPrice": int64(price),
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore settings save unitPrice: %w", err)
	}
	return nil
}

func (r *SettingsRepositoryFS) SaveMetadataBase(ctx context.Context, base string) error {
	if r == nil || r.Client == nil {
		return errors.New("firestore client is nil")
	}
	_, err := r.docRef().Set(ctx, map[string]interface{}{
		"metadataBase": base,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("firestore settings save metadataBase: %w", err)
	}
	return nil
}
