package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/cloo-solutions/scratch/internal/api"
)

type contextKey string

const UserIDKey contextKey = "user_id"

var (
	errMissingAuth = errors.New("missing authorization header")
	errAuthFormat  = errors.New("invalid authorization format")
)

// AuthValidator resolves a bearer token to the owning user ID.
type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, error) {
	if header == "" {
		return "", errMissingAuth
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errAuthFormat
	}
	return token, nil
}

// APIKeyAuth rejects requests without a valid API key and stores the owning
// user on the request context.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r.Header.Get("Authorization"))
			if err != nil {
				api.Error(w, http.StatusUnauthorized, err.Error())
				return
			}

			userID, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			noteUser(r.Context(), userID)
			tagUser(r, userID)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// WithUserID returns ctx carrying userID as the authenticated user.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID returns the authenticated user, or "" outside APIKeyAuth.
func GetUserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}
