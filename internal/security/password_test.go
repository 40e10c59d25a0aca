package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func init() {
	Cost = bcrypt.MinCost
}

func TestHashPasswordAndMatch(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	if hash == "correct horse" {
		t.Fatalf("hash must not equal the plaintext")
	}

	ok, err := MatchPassword(hash, "correct horse")
	if err != nil || !ok {
		t.Fatalf("expected match, got ok=%v err=%v", ok, err)
	}

	ok, err = MatchPassword(hash, "wrong horse")
	if err != nil || ok {
		t.Fatalf("expected mismatch, got ok=%v err=%v", ok, err)
	}
}

func TestHashPasswordIsSalted(t *testing.T) {
	a, _ := HashPassword("same")
	b, _ := HashPassword("same")

	if a == b {
		t.Fatalf("expected different hashes for the same password")
	}
}

func TestMatchPasswordMalformedHash(t *testing.T) {
	// legacy unsalted sha256 hex digests are not accepted
	ok, err := MatchPassword("5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", "password")
	if ok || err == nil {
		t.Fatalf("expected error for a non-bcrypt hash, got ok=%v err=%v", ok, err)
	}
}
