// internal/infra/solana/anchor_publisher.go
package solana

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/memo"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"

	eventdom "mintledger/internal/domain/event"
)

// AnchorPublisher anchors BatchMinted completion records on-chain as memo
// transactions. event.Sink 実装のひとつ（fire-and-forget: 失敗しても台帳は
// 巻き戻さない。呼び出し側がログするだけ）。
type AnchorPublisher struct {
	Client *client.Client
	Signer *AnchorSigner
}

// NewAnchorPublisher builds the publisher. rpcURL が空なら Devnet を使う。
func NewAnchorPublisher(rpcURL string, signer *AnchorSigner) (*AnchorPublisher, error) {
	if signer == nil {
		return nil, errors.New("anchor publisher: signer is nil")
	}
	if rpcURL == "" {
		rpcURL = rpc.DevnetRPCEndpoint
	}
	return &AnchorPublisher{
		Client: client.NewClient(rpcURL),
		Signer: signer,
	}, nil
}

func (p *AnchorPublisher) Publish(ctx context.Context, ev eventdom.Event) error {
	if p == nil || p.Client == nil || p.Signer == nil {
		return errors.New("anchor publisher: not configured")
	}

	minted, ok := ev.(eventdom.BatchMinted)
	if !ok {
		return nil
	}

	body, err := json.Marshal(minted)
	if err != nil {
		return fmt.Errorf("anchor marshal: %w", err)
	}

	feePayer := p.Signer.Account

	recent, err := p.Client.GetLatestBlockhash(ctx)
	if err != nil {
		return fmt.Errorf("GetLatestBlockhash: %w", err)
	}

	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: []types.Account{feePayer},
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer.PublicKey,
			RecentBlockhash: recent.Blockhash,
			Instructions: []types.Instruction{
				memo.BuildMemo(memo.BuildMemoParam{
					SignerPubkeys: []common.PublicKey{feePayer.PublicKey},
					Memo:          body,
				}),
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("NewTransaction: %w", err)
	}

	sig, err := p.Client.SendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("SendTransaction: %w", err)
	}

	log.Printf("[anchor_publisher] anchored batch recipient=%q count=%d signature=%s",
		minted.Recipient, len(minted.TokenIDs), sig)
	return nil
}
