package middleware

import (
	"log"
	"net/http"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/mjansen/wealth-tracker-backend/internal/api/response"
)

// tokenTTL bounds how long an issued API token stays valid.
const tokenTTL = time.Hour

// APIToken verifies the X-API-Token header against the configured fernet
// key. Tokens are minted out-of-band by the operator (fernet encrypt with
// the shared key) and expire after an hour, which keeps destructive
// endpoints such as ledger reset from being replayed from old logs.
//
// An empty key disables verification; local single-user deployments run
// without tokens.
func APIToken(fernetKey string) func(http.Handler) http.Handler {
	var keys []*fernet.Key
	if fernetKey != "" {
		key, err := fernet.DecodeKey(fernetKey)
		if err != nil {
			log.Printf("invalid FERNET_KEY, API token verification disabled: %v", err)
		} else {
			keys = []*fernet.Key{key}
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if keys == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get("X-API-Token")
			if token == "" {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Missing API token")
				return
			}

			if fernet.VerifyAndDecrypt([]byte(token), tokenTTL, keys) == nil {
				response.RespondError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired API token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
