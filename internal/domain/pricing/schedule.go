// internal/domain/pricing/schedule.go
package pricing

import (
	"errors"
	"math/bits"
)

var (
	// 単価 × 件数が uint64 に収まらない場合。wrap した値で比較してはいけない。
	ErrCostOverflow = errors.New("pricing: total cost overflow")
)

// Schedule は発行 1 件あたりの単価を保持します。
// 管理権限のみが差し替え可能で、発行エンジンからは読み取り専用。
type Schedule struct {
	UnitPrice uint64 `json:"unitPrice"`
}

// TotalCost returns unitPrice * count with an overflow check.
func (s Schedule) TotalCost(count int) (uint64, error) {
	if count <= 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(s.UnitPrice, uint64(count))
	if hi != 0 {
		return 0, ErrCostOverflow
	}
	return lo, nil
}

// Covers reports whether payment is enough for count items.
// 合計がオーバーフローする場合、その支払いで賄えることはあり得ないので false。
func (s Schedule) Covers(count int, payment uint64) bool {
	total, err := s.TotalCost(count)
	if err != nil {
		return false
	}
	return payment >= total
}
