// internal/infra/solana/anchor_signer.go
package solana

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"log"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	smpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
)

// AnchorSigner は完了レコードをオンチェーンに残すための署名用ウォレットです。
type AnchorSigner struct {
	Account types.Account
}

// LoadAnchorSigner は Secret Manager から solana-keygen の keypair
// (JSON配列 [u8;64]) を読み込み、署名用アカウントを復元します。
//
// secretName には
//
//	"projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
//
// のような Secret Version のフルパスを設定してください。
func LoadAnchorSigner(ctx context.Context, secretName string) (*AnchorSigner, error) {
	if secretName == "" {
		return nil, fmt.Errorf("anchor signer secret name is empty")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	resp, err := client.AccessSecretVersion(ctx, &smpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return nil, fmt.Errorf("AccessSecretVersion: %w", err)
	}

	keyBytes, err := decodeKeypairJSON(resp.Payload.Data)
	if err != nil {
		return nil, err
	}

	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("AccountFromBytes: %w", err)
	}

	log.Printf("[anchor_signer] loaded from Secret Manager: secret=%s pubkey=%s",
		secretName, acc.PublicKey.ToBase58())

	return &AnchorSigner{Account: acc}, nil
}

// decodeKeypairJSON は Secret Manager に保存した keypair JSON から
// 64 バイトの鍵配列を復元します。
// - 正: [u8;64] を []byte で受け取る
// - 互換: [int,...] を []int で受けてから []byte に変換
func decodeKeypairJSON(data []byte) ([]byte, error) {
	var keyBytes []byte
	if err := json.Unmarshal(data, &keyBytes); err == nil {
		if len(keyBytes) == ed25519.PrivateKeySize {
			return keyBytes, nil
		}
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("unmarshal keypair json: %w", err)
	}
	if len(ints) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("unexpected secret key length: got %d, want %d", len(ints), ed25519.PrivateKeySize)
	}

	keyBytes = make([]byte, len(ints))
	for i, v := range ints {
		keyBytes[i] = byte(v)
	}
	return keyBytes, nil
}
