package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndValidateToken(t *testing.T) {
	manager, err := NewJWTManager("test-secret")
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	token, err := manager.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("subject = %s, want user-1", claims.Subject)
	}
	if claims.Username != "alice" {
		t.Fatalf("username = %s, want alice", claims.Username)
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || remaining > TokenTTL {
		t.Fatalf("expiry %v outside one-hour window", remaining)
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	issuer, _ := NewJWTManager("key-one")
	verifier, _ := NewJWTManager("key-two")

	token, err := issuer.GenerateToken("user-1", "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := verifier.ValidateToken(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager, _ := NewJWTManager("test-secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := manager.ValidateToken(signed); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	manager, _ := NewJWTManager("test-secret")
	for _, token := range []string{"", "not.a.jwt", "a.b"} {
		if _, err := manager.ValidateToken(token); err != ErrInvalidToken {
			t.Fatalf("ValidateToken(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestRequireToken(t *testing.T) {
	manager, _ := NewJWTManager("test-secret")

	var gotClaims *Claims
	handler := manager.RequireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	token, _ := manager.GenerateToken("user-1", "alice")

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"tampered token", "Bearer " + token + "x", http.StatusUnauthorized},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			gotClaims = nil
			req := httptest.NewRequest(http.MethodGet, "/movies", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != c.status {
				t.Fatalf("status = %d, want %d", rec.Code, c.status)
			}
			if c.status == http.StatusOK {
				if gotClaims == nil || gotClaims.Username != "alice" {
					t.Fatalf("claims not attached to context: %+v", gotClaims)
				}
			}
		})
	}
}
