package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eliotdl/yt-any/server/config"
)

func callerThrough(t *testing.T, authorization string) string {
	t.Helper()

	var caller string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller = CallerFrom(r)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	CallerIdentity(next).ServeHTTP(httptest.NewRecorder(), req)
	return caller
}

func TestCallerIdentity(t *testing.T) {
	config.Instance().Authentication.JwtSecret = "test-secret"

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "eliot",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}

	if got := callerThrough(t, "Bearer "+token); got != "eliot" {
		t.Errorf("expected caller eliot, got %q", got)
	}
}

func TestCallerIdentityAnonymous(t *testing.T) {
	config.Instance().Authentication.JwtSecret = "test-secret"

	if got := callerThrough(t, ""); got != "" {
		t.Errorf("no token should be anonymous, got %q", got)
	}
	if got := callerThrough(t, "Bearer not-a-token"); got != "" {
		t.Errorf("garbage token should be anonymous, got %q", got)
	}

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "mallory",
	}).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatal(err)
	}
	if got := callerThrough(t, "Bearer "+forged); got != "" {
		t.Errorf("badly signed token should be anonymous, got %q", got)
	}
}
