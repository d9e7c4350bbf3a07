// internal/adapters/in/http/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	adminapp "mintledger/internal/application/admin"
	counterdom "mintledger/internal/domain/counter"
	mintdom "mintledger/internal/domain/mint"
	tokendom "mintledger/internal/domain/token"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	body := map[string]string{"error": code}
	if err != nil {
		body["message"] = err.Error()
	}
	writeJSON(w, status, body)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
}

// writeDomainError はドメインの sentinel エラーを HTTP ステータスに対応付ける。
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mintdom.ErrInvalidCount):
		writeError(w, http.StatusBadRequest, "invalid_count", err)
	case errors.Is(err, mintdom.ErrBatchTooLarge):
		writeError(w, http.StatusBadRequest, "batch_too_large", err)
	case errors.Is(err, mintdom.ErrMetadataCountMismatch):
		writeError(w, http.StatusBadRequest, "metadata_count_mismatch", err)
	case errors.Is(err, mintdom.ErrInsufficientPayment):
		writeError(w, http.StatusPaymentRequired, "insufficient_payment", err)
	case errors.Is(err, mintdom.ErrInvalidRecipient):
		writeError(w, http.StatusBadRequest, "invalid_recipient", err)
	case errors.Is(err, counterdom.ErrOverflow):
		writeError(w, http.StatusConflict, "token_id_overflow", err)
	case errors.Is(err, tokendom.ErrAlreadyBound):
		writeError(w, http.StatusConflict, "token_already_bound", err)
	case errors.Is(err, tokendom.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, adminapp.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "unauthorized", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
