package utils

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass", 4)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !VerifyPassword(hash, "s3cret-pass") {
		t.Error("correct password should verify")
	}
	if VerifyPassword(hash, "wrong-pass") {
		t.Error("wrong password must not verify")
	}
}

func TestVerifyPassword_BadHash(t *testing.T) {
	if VerifyPassword("not-a-bcrypt-hash", "anything") {
		t.Error("malformed hash must not verify")
	}
}
