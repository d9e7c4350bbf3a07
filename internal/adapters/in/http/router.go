// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"mintledger/internal/adapters/in/http/handlers"
	"mintledger/internal/adapters/in/http/middleware"
	adminapp "mintledger/internal/application/admin"
	mintapp "mintledger/internal/application/mint"
)

// RouterDeps collects all usecases (and other dependencies) injected from main.go.
type RouterDeps struct {
	Engine   *mintapp.Engine
	AdminUC  *adminapp.Usecase
	Registry mintapp.OwnershipRegistry

	// FirebaseAuth が nil の場合、/admin 配下はマウントしない
	// （権限判定の入り口が無いままさらさないため）。
	FirebaseAuth *middleware.FirebaseAuthClient
}

// NewRouter sets up HTTP routing for the ledger endpoints.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	// Health check (always on)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// 以降、依存が存在するものだけマウントする
	if deps.Engine != nil {
		mux.Handle("/mint/", handlers.NewMintHandler(deps.Engine))
	}

	if deps.Engine != nil && deps.Registry != nil {
		th := handlers.NewTokenHandler(deps.Engine, deps.Registry)
		mux.Handle("/tokens", th)
		mux.Handle("/tokens/", th)
	}

	if deps.AdminUC != nil && deps.FirebaseAuth != nil {
		authMW := &middleware.AuthMiddleware{FirebaseAuth: deps.FirebaseAuth}
		mux.Handle("/admin/", authMW.Handler(handlers.NewAdminHandler(deps.AdminUC)))
	}

	return mux
}
