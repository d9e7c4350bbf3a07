// internal/adapters/in/http/handlers/mint_handler.go
package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	mintapp "mintledger/internal/application/mint"
	mintdom "mintledger/internal/domain/mint"
)

// MintHandler serves the batch-issuance endpoint.
//
//	POST /mint/batch
//	  { "recipient": "...", "count": 3, "metadataRefs": ["a","b","c"], "paymentAmount": 300 }
type MintHandler struct {
	engine *mintapp.Engine
}

func NewMintHandler(engine *mintapp.Engine) http.Handler {
	return &MintHandler{engine: engine}
}

func (h *MintHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Printf("[mint_handler] request method=%s path=%s", r.Method, r.URL.Path)

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/mint/batch":
		h.batchMint(w, r)
		return
	default:
		methodNotAllowed(w)
		return
	}
}

type batchMintRequestBody struct {
	Recipient     string   `json:"recipient"`
	Count         int      `json:"count"`
	MetadataRefs  []string `json:"metadataRefs"`
	PaymentAmount uint64   `json:"paymentAmount"`
}

type batchMintResponseBody struct {
	Recipient string    `json:"recipient"`
	TokenIDs  []uint64  `json:"tokenIds"`
	UnitPrice uint64    `json:"unitPrice"`
	MintedAt  time.Time `json:"mintedAt"`
}

func (h *MintHandler) batchMint(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.engine == nil {
		writeError(w, http.StatusServiceUnavailable, "engine_unavailable", nil)
		return
	}

	var body batchMintRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err)
		return
	}

	start := time.Now()
	req := mintdom.NewRequest(body.Recipient, body.Count, body.MetadataRefs, body.PaymentAmount)

	res, err := h.engine.BatchMint(r.Context(), req)
	if err != nil {
		log.Printf("[mint_handler] batchMint failed recipient=%q count=%d err=%v elapsed=%s",
			req.Recipient, req.Count, err, time.Since(start))
		writeDomainError(w, err)
		return
	}

	ids := make([]uint64, 0, len(res.TokenIDs))
	for _, id := range res.TokenIDs {
		ids = append(ids, uint64(id))
	}

	writeJSON(w, http.StatusOK, batchMintResponseBody{
		Recipient: res.Recipient,
		TokenIDs:  ids,
		UnitPrice: res.UnitPrice,
		MintedAt:  res.MintedAt,
	})
}
