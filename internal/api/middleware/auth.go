package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eldtechnologies/bazaar/internal/models"
	"github.com/eldtechnologies/bazaar/internal/store"
)

type contextKey string

const UserContextKey contextKey = "user"

// AuthMiddleware verifies API tokens issued at registration. A token is
// "<userID>.<secret>"; the secret is stored bcrypt-hashed, so a leaked
// database does not leak usable tokens.
type AuthMiddleware struct {
	db store.DataStore
}

// NewAuthMiddleware creates a new auth middleware.
func NewAuthMiddleware(db store.DataStore) *AuthMiddleware {
	return &AuthMiddleware{db: db}
}

// RequireAuth resolves the caller identity from the bearer token and puts the
// user on the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			jsonError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		idPart, secret, ok := strings.Cut(token, ".")
		if !ok {
			jsonError(w, http.StatusUnauthorized, "malformed token")
			return
		}

		userID, err := uuid.Parse(idPart)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "malformed token")
			return
		}

		user, err := m.db.GetUserByID(r.Context(), userID)
		if err != nil {
			jsonError(w, http.StatusInternalServerError, "database error")
			return
		}
		if user == nil || user.TokenHash == "" {
			jsonError(w, http.StatusUnauthorized, "unknown token")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.TokenHash), []byte(secret)); err != nil {
			jsonError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// bearerToken extracts the token from the Authorization header, falling back
// to the token query parameter for websocket clients that cannot set headers.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func jsonError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// GetUserFromContext retrieves the authenticated user from the request context.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
