package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"moma/models"
)

// SessionVerifier resolves a bearer token to its user.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (models.User, error)
}

type sessionUserKey struct{}
type sessionTokenKey struct{}

func contextWithUser(ctx context.Context, user *models.User, token string) context.Context {
	ctx = context.WithValue(ctx, sessionUserKey{}, user)
	return context.WithValue(ctx, sessionTokenKey{}, token)
}

// UserFromContext returns the signed-in user of the request, or nil.
func UserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(sessionUserKey{}).(*models.User); ok {
		return user
	}
	return nil
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(sessionTokenKey{}).(string)
	return token
}

// SessionMiddleware attaches the user behind a valid bearer token to the
// request context. Requests without a valid token continue anonymously.
func SessionMiddleware(verifier SessionVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), &user, token)))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
