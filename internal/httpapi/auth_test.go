package httpapi

import (
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"cashflowbot/internal/domain"
)

const testSecret = "test-secret-key-with-enough-length!!"

func TestAuthManagerStoresPasswordHash(t *testing.T) {
	manager, err := NewAuthManager(testSecret, time.Hour, "owner-pass")
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	if manager.passwordHash == "owner-pass" {
		t.Fatal("expected plain password to be hashed")
	}
	if !strings.HasPrefix(manager.passwordHash, "$2") {
		t.Fatalf("expected bcrypt password hash, got %s", manager.passwordHash)
	}
}

func TestAuthManagerAcceptsPrehashedPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("owner-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	manager, err := NewAuthManager(testSecret, time.Hour, string(hash))
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	if _, err := manager.Login(domain.LoginRequest{Password: "owner-pass"}); err != nil {
		t.Fatalf("login with prehashed password failed: %v", err)
	}
}

func TestAuthManagerRequiresSecretAndPassword(t *testing.T) {
	if _, err := NewAuthManager("", time.Hour, "owner-pass"); err == nil {
		t.Fatal("expected error without secret")
	}
	if _, err := NewAuthManager(testSecret, time.Hour, "  "); err == nil {
		t.Fatal("expected error without password")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	manager, err := NewAuthManager(testSecret, time.Hour, "owner-pass")
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	if _, err := manager.Login(domain.LoginRequest{Password: "nope"}); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	manager, err := NewAuthManager(testSecret, time.Hour, "owner-pass")
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	resp, err := manager.Login(domain.LoginRequest{Password: "owner-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := time.Parse(time.RFC3339, resp.ExpiresAt); err != nil {
		t.Fatalf("expires_at is not RFC3339: %v", err)
	}

	jti, err := manager.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !strings.HasPrefix(jti, "tok-") {
		t.Fatalf("unexpected token id %q", jti)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	manager, err := NewAuthManager(testSecret, time.Minute, "owner-pass")
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	issuedAt := time.Date(2025, time.March, 5, 10, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issuedAt }
	resp, err := manager.Login(domain.LoginRequest{Password: "owner-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	manager.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	if _, err := manager.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestTokenFromOtherSecretRejected(t *testing.T) {
	manager, err := NewAuthManager(testSecret, time.Hour, "owner-pass")
	if err != nil {
		t.Fatalf("new auth manager: %v", err)
	}
	forged := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.RegisteredClaims{
		Subject:   tokenSubject,
		Issuer:    tokenIssuer,
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := forged.SignedString([]byte("another-secret-of-sufficient-length"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := manager.ParseToken(signed); err == nil {
		t.Fatal("expected token signed with another secret to be rejected")
	}
}
