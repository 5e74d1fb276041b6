package auth

import (
	"context"
	"encoding/json"
	"net/http"
)

type contextKey struct{}

var userIDKey contextKey

// UserID returns the authenticated user id stored by Protect, or "" when
// the request did not pass through it.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// WithUserID returns a context carrying the given user id. Exposed for
// handler tests.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Protect rejects requests without a valid session cookie and stores the
// authenticated user id on the request context.
func (s *Service) Protect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(CookieName)
		if err != nil || cookie.Value == "" {
			unauthorized(w, "unauthorized - no token provided")
			return
		}

		userID, err := s.ValidateToken(r.Context(), cookie.Value)
		if err != nil {
			unauthorized(w, "unauthorized - invalid token")
			return
		}

		next(w, r.WithContext(WithUserID(r.Context(), userID)))
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
