package auth_test

import (
	"testing"
	"time"

	"github.com/catalog-admin-api/internal/auth"
)

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"

	token, err := auth.GenerateToken(secret, 42, "admin@example.com", "admin", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := auth.ParseToken(secret, token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("Expected user id 42, got %d", claims.UserID)
	}
	if claims.Email != "admin@example.com" {
		t.Errorf("Expected email, got %q", claims.Email)
	}
	if claims.Role != "admin" {
		t.Errorf("Expected role 'admin', got %q", claims.Role)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := auth.GenerateToken("secret-a", 1, "a@example.com", "user", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := auth.ParseToken("secret-b", token); err != auth.ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_Expired(t *testing.T) {
	token, err := auth.GenerateToken("secret", 1, "a@example.com", "user", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := auth.ParseToken("secret", token); err != auth.ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_Garbage(t *testing.T) {
	if _, err := auth.ParseToken("secret", "not-a-token"); err != auth.ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "hunter22" {
		t.Error("Hash should not equal the plain password")
	}

	if !auth.CheckPassword(hash, "hunter22") {
		t.Error("Correct password should verify")
	}
	if auth.CheckPassword(hash, "hunter23") {
		t.Error("Wrong password should not verify")
	}
}
