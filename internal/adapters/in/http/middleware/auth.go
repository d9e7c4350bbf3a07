// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
)

// FirebaseAuthClient は firebase auth クライアントのエイリアス。
type FirebaseAuthClient = fbauth.Client

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var ctxKeyAccountID = ctxKey{name: "accountId"}

// AccountIDFromContext returns the authenticated caller account id ("" if none).
func AccountIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeyAccountID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// WithAccountID はテストなどでアカウント ID を直接注入するためのヘルパ。
func WithAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, ctxKeyAccountID, strings.TrimSpace(accountID))
}

// AuthMiddleware は
//
//   - Authorization: Bearer <ID_TOKEN>
//
// を検証し、呼び出し元アカウント ID (= Firebase UID) を context に詰めて
// 次のハンドラへ渡す。管理操作の権限判定自体は admin usecase 側で行う。
type AuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.FirebaseAuth == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		log.Printf("[AuthMiddleware] path=%s accountId=%s", r.URL.Path, uid)

		next.ServeHTTP(w, r.WithContext(WithAccountID(r.Context(), uid)))
	})
}
