// internal/adapters/out/gcs/batch_archive_gcs.go
package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"

	eventdom "mintledger/internal/domain/event"
)

// BatchArchiveGCS archives every BatchMinted completion record as a JSON
// object: {bucket}/batches/{firstTokenId}-{lastTokenId}.json
//
// 監査用のアーカイブ。event.Sink 実装のひとつで、価格や metadataBase の
// 変更イベントは対象外（Firestore の ledgerEvents 側に残る）。
type BatchArchiveGCS struct {
	Client *storage.Client
	Bucket string
}

func NewBatchArchiveGCS(client *storage.Client, bucket string) *BatchArchiveGCS {
	return &BatchArchiveGCS{Client: client, Bucket: bucket}
}

func (s *BatchArchiveGCS) Publish(ctx context.Context, ev eventdom.Event) error {
	if s == nil || s.Client == nil || s.Bucket == "" {
		return errors.New("gcs archive: not configured")
	}

	minted, ok := ev.(eventdom.BatchMinted)
	if !ok {
		return nil
	}
	if len(minted.TokenIDs) == 0 {
		return nil
	}

	first := minted.TokenIDs[0]
	last := minted.TokenIDs[len(minted.TokenIDs)-1]
	objectPath := fmt.Sprintf("batches/%d-%d.json", first, last)

	body, err := json.Marshal(minted)
	if err != nil {
		return fmt.Errorf("gcs archive marshal: %w", err)
	}

	// 書き込みは短いタイムアウトで切る（fire-and-forget なので引きずらない）
	wctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	w := s.Client.Bucket(s.Bucket).Object(objectPath).NewWriter(wctx)
	w.ContentType = "application/json"
	if _, err := w.Write(body); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs archive write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs archive close %s: %w", objectPath, err)
	}
	return nil
}
