package httpapi

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/isaidso/auth/internal/common"
	"github.com/isaidso/auth/internal/server/models"
)

type ctxKey string

const tokenKey ctxKey = "token"

// bearerToken extracts the plaintext secret from the Authorization header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	secret, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return secret
}

// requireAccessToken validates the bearer secret and requires the access-api
// capability, placing the token row in the request context. Refresh tokens
// presented here are rejected.
func (s *Server) requireAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := bearerToken(r)
		if secret == "" {
			writeJSON(w, http.StatusUnauthorized, messageResponse("Unauthenticated."))
			return
		}

		token, err := s.tokens.Validate(r.Context(), secret)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, messageResponse("Unauthenticated."))
			return
		}
		if !token.Can(common.CapabilityAccessAPI) {
			writeJSON(w, http.StatusUnauthorized, messageResponse("Unauthenticated."))
			return
		}

		ctx := context.WithValue(r.Context(), tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// tokenFromContext returns the validated token placed by requireAccessToken.
func tokenFromContext(ctx context.Context) (*models.Token, bool) {
	token, ok := ctx.Value(tokenKey).(*models.Token)
	return token, ok
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
