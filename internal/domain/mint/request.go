// internal/domain/mint/request.go
package mint

import (
	"errors"
	"strings"
	"time"

	tokendom "mintledger/internal/domain/token"
)

// MaxBatchSize は 1 回の呼び出しで発行できる最大数。
// 1 呼び出しの最悪コストを抑えるための固定値で、ちょうど MaxBatchSize 件の
// バッチは「最大の合法バッチ」として通常どおり成功する。
const MaxBatchSize = 50

// ------------------------------------------------------
// Errors
// ------------------------------------------------------

var (
	ErrInvalidCount          = errors.New("mint: count must be positive")
	ErrBatchTooLarge         = errors.New("mint: batch too large")
	ErrMetadataCountMismatch = errors.New("mint: metadataRefs length does not match count")
	ErrInsufficientPayment   = errors.New("mint: insufficient payment")
	ErrInvalidRecipient      = errors.New("mint: invalid recipient")
)

// ------------------------------------------------------
// Request / Result（呼び出し単位の一時データ。永続化しない）
// ------------------------------------------------------

// Request is one batch-mint call: recipient, item count, per-item metadata
// references and the payment amount attached to the call.
type Request struct {
	Recipient    string   `json:"recipient"`
	Count        int      `json:"count"`
	MetadataRefs []string `json:"metadataRefs"`
	Payment      uint64   `json:"paymentAmount"`
}

// NewRequest normalizes the recipient and returns the request as-is otherwise.
// 検証は Validate に寄せる（ハンドラ側でエラー順序を保証したいため）。
func NewRequest(recipient string, count int, metadataRefs []string, payment uint64) Request {
	return Request{
		Recipient:    strings.TrimSpace(recipient),
		Count:        count,
		MetadataRefs: metadataRefs,
		Payment:      payment,
	}
}

// Validate performs the structural checks, in this order, first failure wins.
// 順序は監査可能なエラー報告のために固定:
//  1. count > 0
//  2. count <= MaxBatchSize
//  3. len(metadataRefs) == count
//
// 支払い検証（単価 × count）は価格表を持つエンジン側が 4 番目に行う。
// metadataRefs の重複・空文字はここでは弾かない（一意制約は tokenId のみ）。
func (r Request) Validate() error {
	if r.Count <= 0 {
		return ErrInvalidCount
	}
	if r.Count > MaxBatchSize {
		return ErrBatchTooLarge
	}
	if len(r.MetadataRefs) != r.Count {
		return ErrMetadataCountMismatch
	}
	return nil
}

// Result is the ordered allocation outcome of one successful call.
// TokenIDs は割り当て順で厳密に増加し、隙間なく連続する。
type Result struct {
	Recipient string        `json:"recipient"`
	TokenIDs  []tokendom.ID `json:"tokenIds"`
	UnitPrice uint64        `json:"unitPrice"`
	MintedAt  time.Time     `json:"mintedAt"`
}
