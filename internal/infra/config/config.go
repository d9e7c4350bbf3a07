// internal/infra/config/config.go
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config はアプリケーション全体の環境変数設定を保持します。
type Config struct {
	Port string

	// Firestore / GCP
	FirestoreProjectID       string
	FirestoreCredentialsFile string
	GCPCreds                 string

	// PostgreSQL（レポーティング用の代替台帳。未設定なら Firestore のみ）
	PostgresDSN string

	// 管理権限: 単一の管理口座 ID。
	// Secret Manager 側（ADMIN_ACCOUNT_SECRET_ID）があればそちらを優先する。
	AdminAccountID       string
	AdminAccountSecretID string

	// 台帳の初期値（systemConfig/ledger が未作成の初回起動時のみ使う）
	DefaultUnitPrice    uint64
	DefaultMetadataBase string

	// SendGrid（未設定なら receipt 通知はスキップ）
	SendGridAPIKey string
	MailFrom       string
	MailOpsTo      string

	// GCS アーカイブ（未設定ならスキップ）
	ArchiveBucket string

	// Solana anchor（未設定ならスキップ）
	SolanaRPCURL         string
	AnchorSignerSecretID string
}

// Load は環境変数を読み込み Config を返します。
func Load() *Config {
	defaultProject := getenvDefault("GCP_PROJECT_ID", "")

	cfg := &Config{
		Port:                     getenvDefault("PORT", "8080"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		AdminAccountID:       os.Getenv("ADMIN_ACCOUNT_ID"),
		AdminAccountSecretID: os.Getenv("ADMIN_ACCOUNT_SECRET_ID"),

		DefaultUnitPrice:    getenvUint64Default("DEFAULT_UNIT_PRICE", 0),
		DefaultMetadataBase: os.Getenv("DEFAULT_METADATA_BASE"),

		SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
		MailFrom:       os.Getenv("MAIL_FROM"),
		MailOpsTo:      os.Getenv("MAIL_OPS_TO"),

		ArchiveBucket: os.Getenv("ARCHIVE_BUCKET"),

		SolanaRPCURL:         os.Getenv("SOLANA_RPC_URL"),
		AnchorSignerSecretID: os.Getenv("ANCHOR_SIGNER_SECRET_ID"),
	}

	return cfg
}

// GetFirestoreProjectID は Firestore/GCP プロジェクト ID を返します。
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvUint64Default(key string, def uint64) uint64 {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return def
	}
	return n
}
