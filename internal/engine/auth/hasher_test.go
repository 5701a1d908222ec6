package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Error("Hash must not equal the plaintext")
	}

	if !VerifyPassword("hunter2hunter2", &hash) {
		t.Error("Expected correct password to verify")
	}
	if VerifyPassword("wrong-password", &hash) {
		t.Error("Expected wrong password to fail")
	}
}

func TestVerifyPassword_NoDigest(t *testing.T) {
	empty := ""
	if VerifyPassword("anything", nil) {
		t.Error("nil digest must never verify")
	}
	if VerifyPassword("anything", &empty) {
		t.Error("empty digest must never verify")
	}
}
