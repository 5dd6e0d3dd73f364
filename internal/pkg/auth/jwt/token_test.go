package jwt

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	payload := &Payload{ID: "user-123", Role: "admin"}

	token, err := GenerateToken(payload, "secret-key", SessionExpiration)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	parsed, err := ParseToken(token, "secret-key")
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if parsed.ID != "user-123" || parsed.Role != "admin" {
		t.Errorf("parsed payload = %+v", parsed)
	}
	if parsed.Issuer != TokenIssuer {
		t.Errorf("issuer = %q, want %q", parsed.Issuer, TokenIssuer)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "user-123", Role: "user"}, "right-secret", SessionExpiration)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, "wrong-secret"); err == nil {
		t.Error("ParseToken accepted a token signed with another secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken(&Payload{ID: "user-123", Role: "user"}, "secret-key", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := ParseToken(token, "secret-key"); err == nil {
		t.Error("ParseToken accepted an expired token")
	}
}
