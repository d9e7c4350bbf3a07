// internal/adapters/in/http/handlers/token_handler.go
package handlers

import (
	"net/http"
	"strings"

	mintapp "mintledger/internal/application/mint"
	tokendom "mintledger/internal/domain/token"
)

// TokenHandler serves the read-only ledger surface.
//
//	GET /tokens/current-id          最後に割り当てた tokenId（0 = 未割り当て）
//	GET /tokens/{id}/owner          tokenId の所有者
//	GET /tokens?owner=...           所有者の保有 tokenId 一覧（割り当て順）
type TokenHandler struct {
	engine   *mintapp.Engine
	registry mintapp.OwnershipRegistry
}

func NewTokenHandler(engine *mintapp.Engine, registry mintapp.OwnershipRegistry) http.Handler {
	return &TokenHandler{engine: engine, registry: registry}
}

func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	switch {
	case r.URL.Path == "/tokens/current-id":
		h.currentID(w, r)
		return

	case strings.HasPrefix(r.URL.Path, "/tokens/") && strings.HasSuffix(r.URL.Path, "/owner"):
		h.ownerOf(w, r)
		return

	case r.URL.Path == "/tokens" || r.URL.Path == "/tokens/":
		h.tokensOf(w, r)
		return

	default:
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
}

func (h *TokenHandler) currentID(w http.ResponseWriter, _ *http.Request) {
	if h == nil || h.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "engine_unavailable", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{
		"currentTokenId": uint64(h.engine.CurrentTokenID()),
	})
}

func (h *TokenHandler) ownerOf(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		writeError(w, http.StatusServiceUnavailable, "registry_unavailable", nil)
		return
	}

	raw := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/tokens/"), "/owner")
	id, err := tokendom.ParseID(strings.Trim(raw, "/"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_token_id", err)
		return
	}

	owner, err := h.registry.OwnerOf(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tokenId": uint64(id),
		"owner":   owner,
	})
}

func (h *TokenHandler) tokensOf(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.registry == nil {
		writeError(w, http.StatusServiceUnavailable, "registry_unavailable", nil)
		return
	}

	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner_required", nil)
		return
	}

	ids, err := h.registry.TokensOf(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint64(id))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"owner":    owner,
		"tokenIds": out,
	})
}
