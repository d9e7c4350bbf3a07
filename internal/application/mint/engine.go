// internal/application/mint/engine.go
package mint

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	counterdom "mintledger/internal/domain/counter"
	eventdom "mintledger/internal/domain/event"
	mintdom "mintledger/internal/domain/mint"
	pricingdom "mintledger/internal/domain/pricing"
	tokendom "mintledger/internal/domain/token"
)

// ============================================================
// Engine 本体
// ============================================================

// Engine は 1 回のバッチ発行を検証し、採番セルを回して tokenId を確保し、
// 所有権台帳への束縛と完了イベント発行までを 1 つの原子的な呼び出しとして扱います。
//
// 直列化はこの構造体のミューテックスが担う: バッチ発行どうし、および
// バッチ発行と管理操作（価格・metadataBase の差し替え）は途中で交錯しない。
// Counter / Schedule 自体はロックを持たないので、必ずこの境界を通すこと。
type Engine struct {
	mu sync.Mutex

	counter  *counterdom.Counter
	schedule pricingdom.Schedule
	metaBase string

	registry OwnershipRegistry
	settings SettingsRepository
	sink     eventdom.Sink
}

// NewEngine は復元済みの台帳状態からエンジンを組み立てます。
// registry は必須。settings / sink は任意依存（nil なら永続化・通知をスキップ）。
func NewEngine(
	state LedgerState,
	registry OwnershipRegistry,
	settings SettingsRepository,
	sink eventdom.Sink,
) (*Engine, error) {
	if registry == nil {
		return nil, errors.New("mint engine: ownership registry is nil")
	}
	return &Engine{
		counter:  counterdom.New(state.LastTokenID),
		schedule: pricingdom.Schedule{UnitPrice: state.UnitPrice},
		metaBase: strings.TrimSpace(state.MetadataBase),
		registry: registry,
		settings: settings,
		sink:     sink,
	}, nil
}

// ============================================================
// BatchMint
// ============================================================

// BatchMint は req を検証し、count 個の tokenId を採番して
// (recipient, metadataRefs[i]) に束縛します。
//
// 検証は状態を一切変更する前に、固定順で行う（最初の失敗を返す）:
//  1. count > 0
//  2. count <= MaxBatchSize
//  3. len(metadataRefs) == count
//  4. payment >= unitPrice * count（オーバーフロー検査付き乗算）
//
// 途中で束縛が失敗した場合は採番済みの id をすべて巻き戻し、
// 観測可能な状態変化ゼロで失敗する。成功時のみ BatchMinted を発行する。
func (e *Engine) BatchMint(ctx context.Context, req mintdom.Request) (mintdom.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	if err := req.Validate(); err != nil {
		return mintdom.Result{}, err
	}

	total, costErr := e.schedule.TotalCost(req.Count)
	if costErr != nil || req.Payment < total {
		// 合計がオーバーフローする場合も「この支払いでは賄えない」として扱う
		return mintdom.Result{}, mintdom.ErrInsufficientPayment
	}

	recipient := strings.TrimSpace(req.Recipient)
	if recipient == "" {
		return mintdom.Result{}, mintdom.ErrInvalidRecipient
	}

	// 採番: ここから先で失敗したら必ず snap まで巻き戻す
	snap := e.counter.Snapshot()

	ids := make([]tokendom.ID, 0, req.Count)
	bindings := make([]tokendom.Binding, 0, req.Count)
	for i := 0; i < req.Count; i++ {
		id, err := e.counter.Next()
		if err != nil {
			e.rollback(snap)
			return mintdom.Result{}, err
		}
		b, err := tokendom.NewBinding(id, recipient, req.MetadataRefs[i])
		if err != nil {
			e.rollback(snap)
			return mintdom.Result{}, err
		}
		ids = append(ids, id)
		bindings = append(bindings, b)
	}

	// 所有権の束縛は台帳側で all-or-nothing
	if err := e.registry.Bind(ctx, bindings); err != nil {
		e.rollback(snap)
		log.Printf("[mint_engine] BatchMint bind failed recipient=%q count=%d first=%d err=%v elapsed=%s",
			recipient, req.Count, ids[0], err, time.Since(start))
		return mintdom.Result{}, fmt.Errorf("mint engine: bind: %w", err)
	}

	// 採番位置の永続化（失敗してもログだけ: 再起動時の衝突は台帳の一意制約が検出する）
	if e.settings != nil {
		if err := e.settings.SaveLastTokenID(ctx, e.counter.Current()); err != nil {
			log.Printf("[mint_engine] BatchMint save lastTokenId error last=%d err=%v", e.counter.Current(), err)
		}
	}

	now := time.Now().UTC()
	res := mintdom.Result{
		Recipient: recipient,
		TokenIDs:  ids,
		UnitPrice: e.schedule.UnitPrice,
		MintedAt:  now,
	}

	// 完了イベント: 成功時は必ず発行、失敗時はここまで到達しない
	e.publish(ctx, eventdom.BatchMinted{
		Recipient: recipient,
		TokenIDs:  ids,
		MintedAt:  now,
	})

	log.Printf("[mint_engine] BatchMint ok recipient=%q count=%d first=%d last=%d unitPrice=%d elapsed=%s",
		recipient, req.Count, ids[0], ids[len(ids)-1], e.schedule.UnitPrice, time.Since(start))

	return res, nil
}

func (e *Engine) rollback(snap tokendom.ID) {
	if err := e.counter.Restore(snap); err != nil {
		// ここに来たらバグ（snapshot より前方への復元は拒否される）
		log.Printf("[mint_engine] counter restore failed snap=%d err=%v", snap, err)
	}
}

func (e *Engine) publish(ctx context.Context, ev eventdom.Event) {
	if e.sink == nil {
		return
	}
	if err := e.sink.Publish(ctx, ev); err != nil {
		log.Printf("[mint_engine] publish error type=%s err=%v", ev.EventType(), err)
	}
}

// ============================================================
// 管理操作（権限チェックは admin usecase 側の境界で済ませてから呼ぶ）
// ============================================================

// SetUnitPrice replaces the unit price unconditionally.
// 完了済みの発行には影響しない（以後の支払い検証にのみ効く）。
// 永続化に成功してからメモリ側を差し替える: 失敗した呼び出しは
// 観測可能な変化を一切残さない。
func (e *Engine) SetUnitPrice(ctx context.Context, actor string, newPrice uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.settings != nil {
		if err := e.settings.SaveUnitPrice(ctx, newPrice); err != nil {
			return fmt.Errorf("mint engine: save unit price: %w", err)
		}
	}

	e.schedule = pricingdom.Schedule{UnitPrice: newPrice}

	e.publish(ctx, eventdom.MintPriceUpdated{
		NewPrice:  newPrice,
		UpdatedBy: strings.TrimSpace(actor),
		UpdatedAt: time.Now().UTC(),
	})
	return nil
}

// SetMetadataBase replaces the shared metadata base reference.
// こちらも SetUnitPrice と同じく persist-then-swap。
func (e *Engine) SetMetadataBase(ctx context.Context, actor string, newBase string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	base := strings.TrimSpace(newBase)

	if e.settings != nil {
		if err := e.settings.SaveMetadataBase(ctx, base); err != nil {
			return fmt.Errorf("mint engine: save metadata base: %w", err)
		}
	}

	e.metaBase = base

	e.publish(ctx, eventdom.BaseURIUpdated{
		NewBase:   base,
		UpdatedBy: strings.TrimSpace(actor),
		UpdatedAt: time.Now().UTC(),
	})
	return nil
}

// ============================================================
// 読み取り系
// ============================================================

// CurrentTokenID returns the last allocated id (0 = none allocated).
func (e *Engine) CurrentTokenID() tokendom.ID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.counter.Current()
}

func (e *Engine) UnitPrice() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.schedule.UnitPrice
}

func (e *Engine) MetadataBase() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metaBase
}
