package auth

import (
	"strings"
	"testing"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}

	if !VerifyPassword("hunter2", hash) {
		t.Error("correct password rejected")
	}
	if VerifyPassword("wrong", hash) {
		t.Error("wrong password accepted")
	}
	if VerifyPassword("", hash) {
		t.Error("empty password accepted")
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	first, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if first == second {
		t.Error("two hashes of the same password are identical")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	claims, err := ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("got user id %d, want 42", claims.UserID)
	}
	if claims.Username != "alice" {
		t.Errorf("got username %q, want %q", claims.Username, "alice")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	for _, tokenString := range []string{"", "not.a.token", "aaaa.bbbb.cccc"} {
		if _, err := ParseToken(tokenString); err == nil {
			t.Errorf("ParseToken(%q) accepted an invalid token", tokenString)
		}
	}
}

func TestParseTokenRejectsTamperedSignature(t *testing.T) {
	token, err := GenerateToken(42, "alice")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("got %d token segments, want 3", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	if _, err := ParseToken(tampered); err == nil {
		t.Error("tampered token accepted")
	}
}
