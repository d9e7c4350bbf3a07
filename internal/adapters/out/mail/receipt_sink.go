// internal/adapters/out/mail/receipt_sink.go
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	eventdom "mintledger/internal/domain/event"
)

// EmailClient は receipt sink から見た最小のメール送信ポートです。
// SendGridClient がこれを実装する。
type EmailClient interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

// ReceiptSink mails a short issuance receipt to the operations address
// whenever a batch completes. event.Sink 実装のひとつ（fire-and-forget）。
type ReceiptSink struct {
	Client EmailClient
	From   string
	To     string // 運用通知先（受領者本人のメールアドレスは台帳が持たない）
}

func NewReceiptSink(client EmailClient, from, to string) *ReceiptSink {
	return &ReceiptSink{
		Client: client,
		From:   strings.TrimSpace(from),
		To:     strings.TrimSpace(to),
	}
}

func (s *ReceiptSink) Publish(ctx context.Context, ev eventdom.Event) error {
	if s == nil || s.Client == nil {
		return errors.New("receipt sink: not configured")
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

	subject := fmt.Sprintf("[mintledger] batch minted: %d token(s)", len(minted.TokenIDs))
	body := fmt.Sprintf(
		"recipient: %s\ntokens:    %d .. %d (%d items)\nmintedAt:  %s\n",
		minted.Recipient,
		first,
		last,
		len(minted.TokenIDs),
		minted.MintedAt.Format("2006-01-02 15:04:05 MST"),
	)

	return s.Client.Send(ctx, s.From, s.To, subject, body)
}
