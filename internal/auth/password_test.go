package auth

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	digest, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if digest == "correct horse battery" {
		t.Fatal("digest equals plaintext")
	}
	if !CheckPassword("correct horse battery", digest) {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword("wrong password", digest) {
		t.Error("CheckPassword accepted the wrong password")
	}
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	a, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	b, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestCheckPassword_BadDigest(t *testing.T) {
	if CheckPassword("anything", "not a bcrypt digest") {
		t.Error("CheckPassword accepted a malformed digest")
	}
}
