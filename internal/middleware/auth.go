package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bookworm/bookworm-go/internal/crypto"
	"github.com/bookworm/bookworm-go/internal/model"
)

type contextKey string

const userKey contextKey = "user"

// UserResolver turns a token's embedded user ID into a live identity.
// *repository.UserRepository is the production implementation.
type UserResolver interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// JWTAuth returns middleware that gates a route group on a valid Bearer
// session token. The token must verify, and its embedded user must still
// exist. Verification and resolution failures share one message so the
// response does not reveal which check failed; only structurally
// malformed credentials get a distinct one.
func JWTAuth(secret string, users UserResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeMessage(w, http.StatusUnauthorized, "no authorization header, authorization denied")
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found {
				writeMessage(w, http.StatusUnauthorized, "invalid authorization format, use 'Bearer <token>'")
				return
			}

			// Mobile clients have been seen sending the literal string
			// "null" when their stored token was missing.
			token = strings.TrimSpace(token)
			if token == "" || token == "null" {
				writeMessage(w, http.StatusUnauthorized, "no token, authorization denied")
				return
			}

			if strings.Count(token, ".") != 2 {
				writeMessage(w, http.StatusUnauthorized, "malformed token format")
				return
			}

			claims, err := crypto.ValidateToken(token, secret)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			user, err := users.GetByID(r.Context(), claims.UserID)
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			// Never carry the credential hash through the request context.
			user.PasswordHash = ""

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithUser returns a context carrying the given identity, as JWTAuth
// attaches it after a successful check.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext extracts the authenticated user from the request context.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
