// internal/domain/event/events.go
package event

import (
	"context"
	"log"
	"time"

	tokendom "mintledger/internal/domain/token"
)

// ------------------------------------------------------
// Ledger events（外部オブザーバ向け通知。fire-and-forget）
// ------------------------------------------------------

type Event interface {
	EventType() string
}

// BatchMinted is published exactly once per successful batch mint.
// 失敗した呼び出しでは絶対に発火しない。
type BatchMinted struct {
	Recipient string        `json:"recipient"`
	TokenIDs  []tokendom.ID `json:"tokenIds"`
	MintedAt  time.Time     `json:"mintedAt"`
}

func (BatchMinted) EventType() string { return "BatchMinted" }

// MintPriceUpdated is published when the administrative authority replaces the unit price.
type MintPriceUpdated struct {
	NewPrice  uint64    `json:"newPrice"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (MintPriceUpdated) EventType() string { return "MintPriceUpdated" }

// BaseURIUpdated is published when the shared metadata base reference changes.
type BaseURIUpdated struct {
	NewBase   string    `json:"newBase"`
	UpdatedBy string    `json:"updatedBy"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (BaseURIUpdated) EventType() string { return "BaseURIUpdated" }

// ------------------------------------------------------
// Sink port
// ------------------------------------------------------

// Sink receives ledger events. Publish は応答を要求しない前提で、
// 失敗しても発行処理そのものは巻き戻さない（呼び出し側がログする）。
type Sink interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout delivers each event to every sink. 個々の失敗はログに残して続行する。
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		out = append(out, s)
	}
	return &Fanout{sinks: out}
}

func (f *Fanout) Publish(ctx context.Context, ev Event) error {
	if f == nil || ev == nil {
		return nil
	}
	for _, s := range f.sinks {
		if err := s.Publish(ctx, ev); err != nil {
			log.Printf("[event_fanout] publish error type=%s sink=%T err=%v", ev.EventType(), s, err)
		}
	}
	return nil
}

// LogSink writes every event to the process log. 常に有効な最小のオブザーバ。
type LogSink struct{}

func (LogSink) Publish(_ context.Context, ev Event) error {
	if ev == nil {
		return nil
	}
	switch e := ev.(type) {
	case BatchMinted:
		first, last := tokendom.ID(0), tokendom.ID(0)
		if len(e.TokenIDs) > 0 {
			first, last = e.TokenIDs[0], e.TokenIDs[len(e.TokenIDs)-1]
		}
		log.Printf("[ledger_event] BatchMinted recipient=%q count=%d first=%d last=%d", e.Recipient, len(e.TokenIDs), first, last)
	case MintPriceUpdated:
		log.Printf("[ledger_event] MintPriceUpdated newPrice=%d updatedBy=%q", e.NewPrice, e.UpdatedBy)
	case BaseURIUpdated:
		log.Printf("[ledger_event] BaseURIUpdated newBase=%q updatedBy=%q", e.NewBase, e.UpdatedBy)
	default:
		log.Printf("[ledger_event] %s %+v", ev.EventType(), ev)
	}
	return nil
}
