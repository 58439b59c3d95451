package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessToken_RoundTrip(t *testing.T) {
	const secret = "test-secret"
	at, err := NewAccessToken(secret, 42, "organizer", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if at.Exp.Before(time.Now().UTC().Add(14 * time.Minute)) {
		t.Error("expiry should be about 15 minutes out")
	}

	parsed, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("parse signed token: %v", err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		t.Fatal("token should be valid with MapClaims")
	}
	if sub, _ := claims["sub"].(float64); uint64(sub) != 42 {
		t.Errorf("sub claim = %v, want 42", claims["sub"])
	}
	if claims["role"] != "organizer" {
		t.Errorf("role claim = %v, want organizer", claims["role"])
	}
}

func TestNewAccessToken_WrongSecretRejected(t *testing.T) {
	at, err := NewAccessToken("right", 1, "attendee", 5)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
		return []byte("wrong"), nil
	}); err == nil {
		t.Error("token signed with another secret should not verify")
	}
}

func TestNewRefreshToken(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Errorf("raw token length = %d, want 96 hex chars", len(rt.Raw))
	}
	if !rt.Exp.After(time.Now().UTC().Add(6 * 24 * time.Hour)) {
		t.Error("expiry should be about seven days out")
	}
}

func TestHashRefreshRaw(t *testing.T) {
	h1 := HashRefreshRaw("token-a")
	h2 := HashRefreshRaw("token-a")
	h3 := HashRefreshRaw("token-b")

	if h1 != h2 {
		t.Error("hashing must be deterministic")
	}
	if h1 == h3 {
		t.Error("different tokens must hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}

func TestConfirmationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := ConfirmationCode()
		if err != nil {
			t.Fatalf("ConfirmationCode: %v", err)
		}
		if len(code) != 12 {
			t.Fatalf("code %q length = %d, want 12", code, len(code))
		}
		if code != strings.ToUpper(code) {
			t.Errorf("code %q should be upper case", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("codes should vary between calls")
	}
}
