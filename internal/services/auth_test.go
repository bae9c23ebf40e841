package services

import (
	"strings"
	"testing"
	"time"
)

func TestGenerateAndValidateToken(t *testing.T) {
	InitAuthService("unit-test-secret-key-that-is-long-enough", time.Hour)

	token, err := GenerateToken("desktop-app")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.ClientName != "desktop-app" {
		t.Errorf("ClientName = %q, want %q", claims.ClientName, "desktop-app")
	}
	if claims.Issuer != "devmon" {
		t.Errorf("Issuer = %q, want %q", claims.Issuer, "devmon")
	}
	if claims.UserAgent != "devmon-ui" {
		t.Errorf("UserAgent = %q", claims.UserAgent)
	}
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	InitAuthService("unit-test-secret-key-that-is-long-enough", time.Hour)

	if _, err := ValidateToken("not.a.token"); err == nil {
		t.Error("ValidateToken() = nil error for garbage input")
	}
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	InitAuthService("first-secret-key-padded-to-enough-length", time.Hour)
	token, err := GenerateToken("desktop-app")
	if err != nil {
		t.Fatal(err)
	}

	// Re-keying the service invalidates previously issued tokens.
	InitAuthService("second-secret-key-padded-to-enough-len", time.Hour)
	if _, err := ValidateToken(token); err == nil {
		t.Error("ValidateToken() = nil error for token signed with old key")
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	InitAuthService("unit-test-secret-key-that-is-long-enough", -time.Minute)
	token, err := GenerateToken("desktop-app")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ValidateToken(token); err == nil {
		t.Error("ValidateToken() = nil error for expired token")
	}
}

func TestShortSecretKeyIsPadded(t *testing.T) {
	service := InitAuthService("short", time.Hour)
	if len(service.secretKey) < 32 {
		t.Errorf("secret key length = %d, want >= 32", len(service.secretKey))
	}
	if !strings.HasPrefix(service.secretKey, "short") {
		t.Errorf("padded key lost its prefix: %q", service.secretKey)
	}
}
