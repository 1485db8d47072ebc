package auth

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Now()

	raw, err := MakeToken("user-1", "Admin", "secret", now)
	if err != nil {
		t.Fatalf("MakeToken: %v", err)
	}

	claims, err := ParseToken(raw, "secret")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Role != "Admin" {
		t.Errorf("Role = %q, want Admin", claims.Role)
	}

	wantExpiry := now.Add(TokenTTL)
	if got := claims.ExpiresAt.Time; got.Sub(wantExpiry) > time.Second || wantExpiry.Sub(got) > time.Second {
		t.Errorf("expiry = %v, want ~%v", got, wantExpiry)
	}
}

func TestParseTokenRejections(t *testing.T) {
	now := time.Now()

	t.Run("wrong secret", func(t *testing.T) {
		raw, err := MakeToken("user-1", "Employee", "secret", now)
		if err != nil {
			t.Fatalf("MakeToken: %v", err)
		}
		if _, err := ParseToken(raw, "other"); !errors.Is(err, ErrBadToken) {
			t.Fatalf("expected ErrBadToken, got %v", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		raw, err := MakeToken("user-1", "Employee", "secret", now.Add(-2*TokenTTL))
		if err != nil {
			t.Fatalf("MakeToken: %v", err)
		}
		if _, err := ParseToken(raw, "secret"); !errors.Is(err, ErrBadToken) {
			t.Fatalf("expected ErrBadToken, got %v", err)
		}
	})

	t.Run("garbage input", func(t *testing.T) {
		if _, err := ParseToken("not-a-token", "secret"); !errors.Is(err, ErrBadToken) {
			t.Fatalf("expected ErrBadToken, got %v", err)
		}
	})
}
