package middleware

import (
	"net/http"
	"time"

	"github.com/avermeer/stock-ledger-backend/internal/api/response"
	"github.com/fernet/fernet-go"
)

// NewAPIKey creates a middleware that requires a valid fernet token in the
// X-API-Key header on every request. Tokens are minted out-of-band with the
// same secret; a TTL of zero disables expiry checking.
func NewAPIKey(secret string, ttl time.Duration) (func(http.Handler) http.Handler, error) {
	key, err := fernet.DecodeKey(secret)
	if err != nil {
		return nil, err
	}
	keys := []*fernet.Key{key}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-API-Key")
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API key")
				return
			}

			if fernet.VerifyAndDecrypt([]byte(token), ttl, keys) == nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}
