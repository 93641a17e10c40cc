package session

import (
	"strings"
	"testing"
	"time"

	"github.com/vitrinehub/vitrine-backend/pkg/config"
)

func tokenConfig() config.SessionConfig {
	return config.SessionConfig{
		TokenSecret: "test-secret",
		TokenIssuer: "vitrine",
		TokenTTL:    time.Hour,
	}
}

func TestMintAndParseToken(t *testing.T) {
	cfg := tokenConfig()

	signed, err := MintToken(cfg, time.Now(), "sess-abc")
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}
	if strings.Count(signed, ".") != 2 {
		t.Fatalf("token %q is not a compact JWT", signed)
	}

	sessionID, err := ParseToken(cfg, signed)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if sessionID != "sess-abc" {
		t.Fatalf("session id = %q", sessionID)
	}
}

func TestMintTokenRequiresSecret(t *testing.T) {
	cfg := tokenConfig()
	cfg.TokenSecret = ""

	if _, err := MintToken(cfg, time.Now(), "sess-abc"); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestParseTokenRejectsTampered(t *testing.T) {
	cfg := tokenConfig()

	signed, err := MintToken(cfg, time.Now(), "sess-abc")
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}

	other := cfg
	other.TokenSecret = "another-secret"
	if _, err := ParseToken(other, signed); err == nil {
		t.Fatal("expected signature mismatch")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	cfg := tokenConfig()

	signed, err := MintToken(cfg, time.Now().Add(-2*time.Hour), "sess-abc")
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}

	if _, err := ParseToken(cfg, signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestParseTokenRejectsForeignIssuer(t *testing.T) {
	cfg := tokenConfig()
	foreign := cfg
	foreign.TokenIssuer = "someone-else"

	signed, err := MintToken(foreign, time.Now(), "sess-abc")
	if err != nil {
		t.Fatalf("MintToken() error = %v", err)
	}

	if _, err := ParseToken(cfg, signed); err == nil {
		t.Fatal("expected issuer mismatch")
	}
}
