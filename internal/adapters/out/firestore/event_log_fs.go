// internal/adapters/out/firestore/event_log_fs.go
package firestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"

	eventdom "mintledger/internal/domain/event"
)

const eventsCollection = "ledgerEvents"

// EventLogFS appends every published ledger event to the ledgerEvents
// collection for audit. event.Sink 実装のひとつ（fire-and-forget）。
type EventLogFS struct {
	Client *firestore.Client
}

func NewEventLogFS(client *firestore.Client) *EventLogFS {
	return &EventLogFS{Client: client}
}

func (s *EventLogFS) Publish(ctx context.Context, ev eventdom.Event) error {
	if s == nil || s.Client == nil {
		return errors.New("firestore client is nil")
	}
	if ev == nil {
		return nil
	}

	data := map[string]interface{}{
		"type":       ev.EventType(),
		"recordedAt": firestore.ServerTimestamp,
	}

	switch e := ev.(type) {
	case eventdom.BatchMinted:
		ids := make([]int64, 0, len(e.TokenIDs))
		for _, id := range e.TokenIDs {
			ids = append(ids, int64(id))
		}
		data["recipient"] = e.Recipient
		data["tokenIds"] = ids
		data["mintedAt"] = e.MintedAt.UTC().Format(time.RFC3339Nano)
	case eventdom.MintPriceUpdated:
		data["newPrice"] = int64(e.NewPrice)
		data["updatedBy"] = e.UpdatedBy
	case eventdom.BaseURIUpdated:
		data["newBase"] = e.NewBase
		data["updatedBy"] = e.UpdatedBy
	default:
		// 未知のイベント型は type のみ記録
	}

	if _, _, err := s.Client.Collection(eventsCollection).Add(ctx, data); err != nil {
		return fmt.Errorf("firestore event log: %w", err)
	}
	return nil
}
