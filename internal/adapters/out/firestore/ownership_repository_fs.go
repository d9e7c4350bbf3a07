// internal/adapters/out/firestore/ownership_repository_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	tokendom "mintledger/internal/domain/token"
)

const tokensCollection = "tokens"

// OwnershipRegistryFS implements mint.OwnershipRegistry using Firestore.
// doc id = tokenId（10進文字列）。owner / metadataRef / tokenId をフィールドに持つ。
type OwnershipRegistryFS struct {
	Client *firestore.Client
}

func NewOwnershipRegistryFS(client *firestore.Client) *OwnershipRegistryFS {
	return &OwnershipRegistryFS{Client: client}
}

// Bind writes every binding inside one Firestore transaction.
// tx.Create は既存ドキュメントで失敗するので、採番の衝突（起こり得ないはずだが）を
// AlreadyExists として検出し token.ErrAlreadyBound で上位へ返す。
// トランザクションなので 1 件でも失敗すればバッチ全体が未反映のまま。
func (r *OwnershipRegistryFS) Bind(ctx context.Context, bindings []tokendom.Binding) error {
	if r == nil || r.Client == nil {
		return errors.New("firestore client is nil")
	}
	if len(bindings) == 0 {
		return nil
	}

	col := r.Client.Collection(tokensCollection)

	err := r.Client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		for _, b := range bindings {
			data := map[string]interface{}{
				"tokenId":     int64(b.TokenID),
				"owner":       b.Owner,
				"metadataRef": b.MetadataRef,
				"mintedAt":    firestore.ServerTimestamp,
			}
			if err := tx.Create(col.Doc(b.TokenID.String()), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return tokendom.ErrAlreadyBound
		}
		return fmt.Errorf("firestore bind: %w", err)
	}
	return nil
}

// OwnerOf returns the owner bound to id.
func (r *OwnershipRegistryFS) OwnerOf(ctx context.Context, id tokendom.ID) (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("firestore client is nil")
	}

	snap, err := r.Client.Collection(tokensCollection).Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", tokendom.ErrNotFound
		}
		return "", fmt.Errorf("firestore ownerOf: %w", err)
	}

	owner, err := snap.DataAt("owner")
	if err != nil {
		return "", fmt.Errorf("firestore ownerOf: %w", err)
	}
	s, ok := owner.(string)
	if !ok || s == "" {
		return "", tokendom.ErrNotFound
	}
	return s, nil
}

// TokensOf returns every tokenId bound to owner, in allocation order.
func (r *OwnershipRegistryFS) TokensOf(ctx context.Context, owner string) ([]tokendom.ID, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("firestore client is nil")
	}

	it := r.Client.Collection(tokensCollection).
		Where("owner", "==", owner).
		OrderBy("tokenId", firestore.Asc).
		Documents(ctx)
	defer it.Stop()

	out := make([]tokendom.ID, 0, 16)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore tokensOf: %w", err)
		}
		id, err := tokendom.ParseID(snap.Ref.ID)
		if err != nil {
			// doc id が壊れているレコードはスキップせずエラーにする
			return nil, fmt.Errorf("firestore tokensOf: bad doc id %q: %w", snap.Ref.ID, err)
		}
		out = append(out, id)
	}
	return out, nil
}
