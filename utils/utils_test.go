package utils

import (
	"strings"
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "correct horse battery staple") {
		t.Fatal("correct password rejected")
	}
	if CheckPassword(hash, "wrong password") {
		t.Fatal("wrong password accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")
	token, err := tm.Generate(42, "alice", "moderator", time.Hour)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	claims, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.UserID != 42 || claims.Username != "alice" || claims.Role != "moderator" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestTokenWrongSecretRejected(t *testing.T) {
	token, err := NewTokenManager("secret-a").Generate(1, "bob", "user", time.Hour)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := NewTokenManager("secret-b").Parse(token); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("test-secret")
	token, err := tm.Generate(1, "bob", "user", -time.Minute)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := tm.Parse(token); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestSanitizeStripsScripts(t *testing.T) {
	in := `hello <script>alert("x")</script><b>world</b>`
	out := Sanitize(in)
	if strings.Contains(out, "<script>") || strings.Contains(out, "alert") {
		t.Fatalf("script survived sanitization: %q", out)
	}
	if !strings.Contains(out, "<b>world</b>") {
		t.Fatalf("benign markup lost: %q", out)
	}
}
