// internal/adapters/in/http/handlers/admin_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"mintledger/internal/adapters/in/http/middleware"
	adminapp "mintledger/internal/application/admin"
)

// AdminHandler serves the authority-gated settings surface.
//
//	GET /admin/settings
//	PUT /admin/settings/unit-price     { "unitPrice": 100 }
//	PUT /admin/settings/metadata-base  { "metadataBase": "ipfs://..." }
//
// 呼び出し元アカウントは AuthMiddleware が context に積んだものを使う。
// 管理口座以外は usecase 側で必ず ErrUnauthorized になる。
type AdminHandler struct {
	adminUC *adminapp.Usecase
}

func NewAdminHandler(adminUC *adminapp.Usecase) http.Handler {
	return &AdminHandler{adminUC: adminUC}
}

func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.adminUC == nil {
		writeError(w, http.StatusServiceUnavailable, "admin_unavailable", nil)
		return
	}

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/admin/settings":
		h.getSettings(w, r)
		return

	case r.Method == http.MethodPut && r.URL.Path == "/admin/settings/unit-price":
		h.setUnitPrice(w, r)
		return

	case r.Method == http.MethodPut && r.URL.Path == "/admin/settings/metadata-base":
		h.setMetadataBase(w, r)
		return

	default:
		methodNotAllowed(w)
		return
	}
}

func (h *AdminHandler) getSettings(w http.ResponseWriter, _ *http.Request) {
	unitPrice, metadataBase := h.adminUC.Settings()
	writeJSON(w, http.StatusOK, map[string]any{
		"unitPrice":    unitPrice,
		"metadataBase": metadataBase,
	})
}

func (h *AdminHandler) setUnitPrice(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UnitPrice uint64 `json:"unitPrice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	actor := middleware.AccountIDFromContext(r.Context())
	if err := h.adminUC.SetUnitPrice(r.Context(), actor, body.UnitPrice); err != nil {
		log.Printf("[admin_handler] setUnitPrice failed actor=%q err=%v", actor, err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"unitPrice": body.UnitPrice})
}

func (h *AdminHandler) setMetadataBase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MetadataBase string `json:"metadataBase"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	actor := middleware.AccountIDFromContext(r.Context())
	if err := h.adminUC.SetMetadataBase(r.Context(), actor, body.MetadataBase); err != nil {
		log.Printf("[admin_handler] setMetadataBase failed actor=%q err=%v", actor, err)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"metadataBase": body.MetadataBase})
}
