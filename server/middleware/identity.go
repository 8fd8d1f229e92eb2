package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eliotdl/yt-any/server/config"
)

type contextKey int

const callerKey contextKey = iota

// CallerIdentity extracts an optional caller identity from a bearer
// token and stores it in the request context. Authentication itself
// happens elsewhere: an absent or invalid token simply yields an
// anonymous request, the identity is used for attribution only.
func CallerIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret := config.Instance().Authentication.JwtSecret

		auth := r.Header.Get("Authorization")
		if secret == "" || !strings.HasPrefix(auth, "Bearer ") {
			next.ServeHTTP(w, r)
			return
		}

		token, err := jwt.Parse(
			strings.TrimPrefix(auth, "Bearer "),
			func(t *jwt.Token) (any, error) { return []byte(secret), nil },
			jwt.WithValidMethods([]string{"HS256"}),
		)
		if err != nil || !token.Valid {
			slog.Debug("ignoring invalid bearer token", slog.Any("err", err))
			next.ServeHTTP(w, r)
			return
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), callerKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerFrom returns the attributed caller identity, empty for
// anonymous requests.
func CallerFrom(r *http.Request) string {
	if caller, ok := r.Context().Value(callerKey).(string); ok {
		return caller
	}
	return ""
}
