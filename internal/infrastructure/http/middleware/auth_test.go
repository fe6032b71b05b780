package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-secret")

func sign(t *testing.T, method jwt.SigningMethod, key any, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(method, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func authRequest(h http.Handler, header string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, "http://example/products/", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAuthenticate(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := Authenticate(testSecret, discardLogger())(ok)

	valid := sign(t, jwt.SigningMethodHS256, testSecret, time.Now().Add(time.Hour))
	if rec := authRequest(h, "Bearer "+valid); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for a valid token, got %d", rec.Code)
	}

	expired := sign(t, jwt.SigningMethodHS256, testSecret, time.Now().Add(-time.Hour))
	otherKey := sign(t, jwt.SigningMethodHS256, []byte("other"), time.Now().Add(time.Hour))
	wrongAlg := sign(t, jwt.SigningMethodHS512, testSecret, time.Now().Add(time.Hour))

	for name, header := range map[string]string{
		"missing":   "",
		"no scheme": valid,
		"basic":     "Basic dXNlcjpwYXNz",
		"garbage":   "Bearer not.a.token",
		"expired":   "Bearer " + expired,
		"other key": "Bearer " + otherKey,
		"wrong alg": "Bearer " + wrongAlg,
	} {
		rec := authRequest(h, header)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
		if rec.Body.String() != "{\"detail\":\"Not authenticated\"}\n" {
			t.Fatalf("%s: unexpected body %q", name, rec.Body.String())
		}
	}
}
