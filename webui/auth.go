// auth.go implements optional bearer-token authentication for the API.
// The configured token is kept only as a bcrypt hash in memory; each
// request's token is compared against the hash, so the plaintext never
// sits in the process longer than startup.
package webui

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// tokenHashCost is the bcrypt cost factor for the token hash.
	// Interactive API calls compare once per request, so the default
	// cost is a reasonable latency/safety balance.
	tokenHashCost = bcrypt.DefaultCost

	// bearerPrefix is the expected Authorization scheme.
	bearerPrefix = "Bearer "
)

// ErrEmptyToken is returned when creating an authenticator with no token.
var ErrEmptyToken = errors.New("auth token cannot be empty")

// TokenAuth authenticates requests by Authorization: Bearer token.
type TokenAuth struct {
	hash []byte
}

// NewTokenAuth creates a TokenAuth for the given plaintext token.
//
// Example:
//
//	auth, err := webui.NewTokenAuth(cfg.WebUIToken)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	mux.Handle("/api/analyze", auth.Middleware(analyzeHandler))
func NewTokenAuth(token string) (*TokenAuth, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), tokenHashCost)
	if err != nil {
		return nil, err
	}
	return &TokenAuth{hash: hash}, nil
}

// Check reports whether the presented token matches.
func (a *TokenAuth) Check(token string) bool {
	if token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(a.hash, []byte(token)) == nil
}

// Middleware wraps a handler with bearer-token authentication,
// returning 401 for missing or invalid tokens.
//
// A nil *TokenAuth disables authentication and passes requests through.
func (a *TokenAuth) Middleware(next http.Handler) http.Handler {
	if a == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if !a.Check(token) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractBearerToken pulls the token from the Authorization header.
// Returns "" when the header is absent or uses another scheme.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(header[len(bearerPrefix):])
}
