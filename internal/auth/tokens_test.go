package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/taskdeckapp/taskdeck-server/internal/domain"
)

const testKeyHex = "0000000000000000000000000000000000000000000000000000000000000001"

func newTestTokenService(t *testing.T, accessDuration time.Duration) *TokenService {
	t.Helper()
	svc, err := NewTokenService(testKeyHex, accessDuration, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestNewTokenServiceRejectsBadKeys(t *testing.T) {
	if _, err := NewTokenService("tooshort", time.Minute, time.Hour); err == nil {
		t.Error("expected error for short key")
	}
	notHex := strings.Repeat("zz", 32)
	if _, err := NewTokenService(notHex, time.Minute, time.Hour); err == nil {
		t.Error("expected error for non-hex key")
	}
}

func TestAccessTokenRoundtrip(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)
	user := &domain.User{
		ID:       "usr_test1234",
		Email:    "alice@example.com",
		Username: "alice",
	}

	token, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if !strings.HasPrefix(token, "v4.local.") {
		t.Fatalf("not a v4.local token: %s", token[:20])
	}

	claims, err := svc.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID: got %q", claims.UserID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email: got %q", claims.Email)
	}
	if claims.Username != user.Username {
		t.Errorf("Username: got %q", claims.Username)
	}
	if claims.Subject != user.ID {
		t.Errorf("Subject: got %q", claims.Subject)
	}
	if claims.TokenID == "" {
		t.Error("TokenID missing")
	}
}

func TestVerifyAccessTokenRejectsExpired(t *testing.T) {
	svc := newTestTokenService(t, -time.Minute)
	token, err := svc.GenerateAccessToken(&domain.User{ID: "usr_x", Email: "x@example.com"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := svc.VerifyAccessToken(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestVerifyAccessTokenRejectsWrongKey(t *testing.T) {
	svc := newTestTokenService(t, 15*time.Minute)
	token, err := svc.GenerateAccessToken(&domain.User{ID: "usr_x", Email: "x@example.com"})
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	otherKey := "0000000000000000000000000000000000000000000000000000000000000002"
	other, err := NewTokenService(otherKey, 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if _, err := other.VerifyAccessToken(token); err == nil {
		t.Error("token verified under a different key")
	}
}

func TestRefreshTokenGenerationAndHashing(t *testing.T) {
	svc := newTestTokenService(t, time.Minute)

	t1, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	t2, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	if t1 == t2 {
		t.Error("two refresh tokens are identical")
	}

	h1 := HashRefreshToken(t1)
	if h1 != HashRefreshToken(t1) {
		t.Error("hashing is not deterministic")
	}
	if h1 == HashRefreshToken(t2) {
		t.Error("distinct tokens share a hash")
	}
	if len(h1) != 64 {
		t.Errorf("hash length: got %d, want 64", len(h1))
	}
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	key1, err := LoadOrGenerateKey(dir)
	if err != nil {
		t.Fatalf("LoadOrGenerateKey: %v", err)
	}
	if len(key1) != 64 {
		t.Fatalf("key length: got %d, want 64", len(key1))
	}

	// Second call loads the same key.
	key2, err := LoadOrGenerateKey(dir)
	if err != nil {
		t.Fatalf("LoadOrGenerateKey reload: %v", err)
	}
	if key1 != key2 {
		t.Error("key changed between loads")
	}

	// The generated key must work with the token service.
	if _, err := NewTokenService(key1, time.Minute, time.Hour); err != nil {
		t.Errorf("generated key rejected: %v", err)
	}
}
