// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"

	httpin "mintledger/internal/adapters/in/http"
	"mintledger/internal/adapters/in/http/middleware"
	dbadapter "mintledger/internal/adapters/out/db"
	fsadapter "mintledger/internal/adapters/out/firestore"
	gcsadapter "mintledger/internal/adapters/out/gcs"
	mailadapter "mintledger/internal/adapters/out/mail"
	adminapp "mintledger/internal/application/admin"
	mintapp "mintledger/internal/application/mint"
	eventdom "mintledger/internal/domain/event"
	appcfg "mintledger/internal/infra/config"
	"mintledger/internal/infra/database"
	fsinfra "mintledger/internal/infra/firestore"
	"mintledger/internal/infra/secrets"
	solanainfra "mintledger/internal/infra/solana"
)

// Container owns external clients and the assembled usecases.
// Firestore は必須。PostgreSQL / Firebase / GCS / SendGrid / Solana は
// best-effort（未設定・失敗は warn して続行）。
type Container struct {
	Config *appcfg.Config

	firestore *fsinfra.ClientWrapper
	pg        *database.DB
	gcs       *storage.Client

	Engine   *mintapp.Engine
	AdminUC  *adminapp.Usecase
	Registry mintapp.OwnershipRegistry

	firebaseAuth *middleware.FirebaseAuthClient
}

// NewContainer initializes shared infrastructure and wires the ledger.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		return nil, errors.New("di: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	c := &Container{Config: cfg}

	// ── Firestore（必須）────────────────────────────────
	fsw, err := fsinfra.NewClient(ctx, projectID, cfg.FirestoreCredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("di: firestore init: %w", err)
	}
	if err := fsw.Ping(ctx); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("di: firestore ping: %w", err)
	}
	c.firestore = fsw

	// ── OwnershipRegistry: 既定は Firestore、POSTGRES_DSN があれば PG ──
	if dsn := strings.TrimSpace(cfg.PostgresDSN); dsn != "" {
		pg, err := database.NewConnection(dsn)
		if err != nil {
			log.Printf("[di] WARN: postgres init failed, falling back to firestore registry: %v", err)
		} else {
			c.pg = pg
			c.Registry = dbadapter.NewOwnershipRegistryPG(pg.Client)
			log.Printf("[di] ownership registry = postgres")
		}
	}
	if c.Registry == nil {
		c.Registry = fsadapter.NewOwnershipRegistryFS(fsw.Client)
		log.Printf("[di] ownership registry = firestore")
	}

	// ── 台帳状態の復元 ──────────────────────────────────
	settings := fsadapter.NewSettingsRepositoryFS(fsw.Client)
	state, err := settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("di: settings load: %w", err)
	}
	if state.LastTokenID == 0 && state.UnitPrice == 0 && state.MetadataBase == "" {
		// 初回起動: 環境変数の初期値を採用
		state.UnitPrice = cfg.DefaultUnitPrice
		state.MetadataBase = cfg.DefaultMetadataBase
	}
	log.Printf("[di] ledger state lastTokenId=%d unitPrice=%d metadataBase=%q",
		state.LastTokenID, state.UnitPrice, state.MetadataBase)

	// ── Event sinks（fanout; 個々は fire-and-forget）──────
	sinks := []eventdom.Sink{
		eventdom.LogSink{},
		fsadapter.NewEventLogFS(fsw.Client),
	}

	if cfg.SendGridAPIKey != "" && cfg.MailFrom != "" && cfg.MailOpsTo != "" {
		sg := mailadapter.NewSendGridClient(cfg.SendGridAPIKey)
		sinks = append(sinks, mailadapter.NewReceiptSink(sg, cfg.MailFrom, cfg.MailOpsTo))
		log.Printf("[di] receipt mail sink enabled to=%s", cfg.MailOpsTo)
	}

	if cfg.ArchiveBucket != "" {
		gcsClient, err := storage.NewClient(ctx)
		if err != nil {
			log.Printf("[di] WARN: gcs init failed, archive sink disabled: %v", err)
		} else {
			c.gcs = gcsClient
			sinks = append(sinks, gcsadapter.NewBatchArchiveGCS(gcsClient, cfg.ArchiveBucket))
			log.Printf("[di] gcs archive sink enabled bucket=%s", cfg.ArchiveBucket)
		}
	}

	if cfg.AnchorSignerSecretID != "" {
		signer, err := solanainfra.LoadAnchorSigner(ctx, cfg.AnchorSignerSecretID)
		if err != nil {
			log.Printf("[di] WARN: anchor signer load failed, anchor sink disabled: %v", err)
		} else if pub, err := solanainfra.NewAnchorPublisher(cfg.SolanaRPCURL, signer); err != nil {
			log.Printf("[di] WARN: anchor publisher init failed: %v", err)
		} else {
			sinks = append(sinks, pub)
			log.Printf("[di] solana anchor sink enabled")
		}
	}

	// ── Engine ──────────────────────────────────────────
	engine, err := mintapp.NewEngine(state, c.Registry, settings, eventdom.NewFanout(sinks...))
	if err != nil {
		return nil, fmt.Errorf("di: engine init: %w", err)
	}
	c.Engine = engine

	// ── 管理権限 ────────────────────────────────────────
	adminAccountID := strings.TrimSpace(cfg.AdminAccountID)
	if cfg.AdminAccountSecretID != "" {
		if id, err := secrets.LoadAdminAccountID(ctx, projectID, cfg.AdminAccountSecretID); err != nil {
			log.Printf("[di] WARN: admin account secret load failed, using env fallback: %v", err)
		} else {
			adminAccountID = id
		}
	}
	if adminAccountID == "" {
		log.Printf("[di] WARN: admin account id is empty; every admin operation will be rejected")
	}
	c.AdminUC = adminapp.NewUsecase(
		adminapp.SingleAccountAuthority{AdminAccountID: adminAccountID},
		engine,
	)

	// ── Firebase Auth（best-effort）──────────────────────
	if app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}); err != nil {
		log.Printf("[di] WARN: firebase init failed: %v", err)
	} else if auth, err := app.Auth(ctx); err != nil {
		log.Printf("[di] WARN: firebase auth init failed: %v", err)
	} else {
		c.firebaseAuth = auth
	}

	return c, nil
}

// RouterDeps returns the dependency bundle for the HTTP router.
func (c *Container) RouterDeps() httpin.RouterDeps {
	return httpin.RouterDeps{
		Engine:       c.Engine,
		AdminUC:      c.AdminUC,
		Registry:     c.Registry,
		FirebaseAuth: c.firebaseAuth,
	}
}

// Close releases owned clients.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.gcs != nil {
		_ = c.gcs.Close()
	}
	if c.pg != nil {
		_ = c.pg.Close()
	}
	if c.firestore != nil {
		_ = c.firestore.Close()
	}
}
