package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signHS256(t *testing.T, subject string, secret string) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "a@example.com",
		Name:  "Ada",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func authProbe() (http.Handler, *string) {
	var seenUserID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return Auth(testSecret)(next), &seenUserID
}

func TestAuthAcceptsValidToken(t *testing.T) {
	t.Parallel()
	handler, seen := authProbe()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signHS256(t, "user_123", testSecret))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if *seen != "user_123" {
		t.Fatalf("expected subject in context, got %q", *seen)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	t.Parallel()
	handler, _ := authProbe()

	cases := map[string]string{
		"missing header": "",
		"not bearer":     "Basic abc",
		"wrong secret":   "Bearer " + signHS256(t, "user_123", "other-secret"),
		"empty subject":  "Bearer " + signHS256(t, "", testSecret),
		"garbage token":  "Bearer not.a.token",
		"expired token":  "Bearer " + expiredToken(t),
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, rec.Code)
		}
	}
}

func expiredToken(t *testing.T) string {
	t.Helper()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user_123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestValidateMessageContent(t *testing.T) {
	t.Parallel()

	if err := ValidateMessageContent("hello"); err != nil {
		t.Fatalf("valid content rejected: %v", err)
	}
	if err := ValidateMessageContent(""); err == nil {
		t.Fatal("empty content accepted")
	}
	if err := ValidateMessageContent(strings.Repeat("a", 100001)); err == nil {
		t.Fatal("oversized content accepted")
	}
	if err := ValidateMessageContent("bad\xff\xfe"); err == nil {
		t.Fatal("invalid UTF-8 accepted")
	}
}

func TestParseConversationID(t *testing.T) {
	t.Parallel()

	if _, err := ParseConversationID("65f1a0b2c3d4e5f6a7b8c9d0"); err != nil {
		t.Fatalf("valid hex id rejected: %v", err)
	}
	if _, err := ParseConversationID("nope"); err == nil {
		t.Fatal("malformed id accepted")
	}
}
