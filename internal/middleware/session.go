package middleware

import (
	"net/http"

	"github.com/chatgate/internal/auth"
	"github.com/chatgate/internal/logger"
)

// SessionAuth gates REST routes with the same token extraction and validation
// as the websocket handshake: X-Session-Id header, sessionId cookie fallback.
func SessionAuth(validator auth.Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				http.Error(w, `{"error":"no credentials"}`, http.StatusUnauthorized)
				return
			}
			user, err := validator.ValidateSession(r.Context(), token)
			if err != nil {
				logger.Errorf("session validate: %v", err)
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			if user == nil {
				http.Error(w, `{"error":"invalid session"}`, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
