package auth

import "testing"

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret1" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := VerifyPassword(hash, "secret1"); err != nil {
		t.Fatalf("VerifyPassword should accept the original password: %v", err)
	}
	if err := VerifyPassword(hash, "secret2"); err == nil {
		t.Fatal("VerifyPassword should reject a different password")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	if err := VerifyPassword("not-a-bcrypt-hash", "anything"); err == nil {
		t.Fatal("expected failure for malformed stored hash")
	}
	if err := VerifyPassword("", "anything"); err == nil {
		t.Fatal("expected failure for empty stored hash")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}
