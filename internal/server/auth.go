package server

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/desertthunder/cinemate/internal/shared"
)

// Tokens issues opaque bearer tokens and maps them back to user ids.
type Tokens struct {
	mu      sync.RWMutex
	byToken map[string]string
}

// NewTokens returns an empty token table.
func NewTokens() *Tokens {
	return &Tokens{byToken: map[string]string{}}
}

// Issue creates a new token for userID.
func (t *Tokens) Issue(userID string) string {
	token := shared.GenerateID()
	t.mu.Lock()
	t.byToken[token] = userID
	t.mu.Unlock()
	return token
}

// Lookup returns the user a token was issued to.
func (t *Tokens) Lookup(token string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.byToken[token]
	return id, ok
}

// Revoke invalidates token.
func (t *Tokens) Revoke(token string) {
	t.mu.Lock()
	delete(t.byToken, token)
	t.mu.Unlock()
}

type userIDKey struct{}

// UserID returns the user id attached by [BearerAuth].
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// BearerAuth rejects requests without a known bearer token with 401.
func BearerAuth(tokens *Tokens) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, "No token provided")
				return
			}
			userID, ok := tokens.Lookup(token)
			if !ok {
				writeMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey{}, userID)))
		})
	}
}
