// internal/domain/counter/counter.go
package counter

import (
	"errors"
	"math"

	tokendom "mintledger/internal/domain/token"
)

// ------------------------------------------------------
// Counter: プロセス全体で唯一の採番セル
// ------------------------------------------------------
//
// 隠れたグローバルにはせず、エンジン構築時に注入して使う。
// 保持する値は「最後に割り当てた tokenId」（0 = 未割り当て）。
// 単調非減少・1 ステップずつ前進・wrap しない（溢れる前に失敗する）。
//
// ロックは持たない。呼び出しの直列化はホスト側（エンジンの
// 単一書き込み境界）が保証する前提。

var (
	ErrOverflow = errors.New("counter: tokenId overflow")
	// Restore はロールバック専用。前方への復元は採番の単調性を壊すので拒否する。
	ErrRestoreForward = errors.New("counter: restore would advance the counter")
)

type Counter struct {
	last uint64
}

// New creates a counter resuming from the last allocated id (0 = fresh ledger).
func New(last tokendom.ID) *Counter {
	return &Counter{last: uint64(last)}
}

// Next advances the stored scalar by exactly 1 and returns the new id.
// 実用上は到達し得ないが、wrap ではなく必ず検査付きで失敗させる。
func (c *Counter) Next() (tokendom.ID, error) {
	if c.last == math.MaxUint64 {
		return 0, ErrOverflow
	}
	c.last++
	return tokendom.ID(c.last), nil
}

// Current returns the last allocated id (0 = none allocated).
func (c *Counter) Current() tokendom.ID {
	return tokendom.ID(c.last)
}

// Snapshot returns the value to hand to Restore for a compensating rollback.
func (c *Counter) Snapshot() tokendom.ID {
	return c.Current()
}

// Restore rolls the counter back to a snapshot taken earlier in the same call.
// 失敗した呼び出しが採番済み・未束縛の id を漏らさないための補償処理。
func (c *Counter) Restore(snap tokendom.ID) error {
	if uint64(snap) > c.last {
		return ErrRestoreForward
	}
	c.last = uint64(snap)
	return nil
}
