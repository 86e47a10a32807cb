package account

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPINHashAndVerify(t *testing.T) {
	hasher := NewPINHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("4821")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if string(hash) == "4821" {
		t.Fatalf("hash must not equal the plain pin")
	}

	if !hasher.Verify("4821", hash) {
		t.Fatalf("expected correct pin to verify")
	}
	if hasher.Verify("", hash) {
		t.Fatalf("empty pin must not verify")
	}

	// every single-character mutation must fail
	for i := 0; i < len("4821"); i++ {
		mutated := []byte("4821")
		mutated[i]++
		if hasher.Verify(string(mutated), hash) {
			t.Fatalf("mutated pin %q must not verify", mutated)
		}
	}
}

func TestPINHashRejectsShortPIN(t *testing.T) {
	hasher := NewPINHasher(bcrypt.MinCost)
	if _, err := hasher.Hash("123"); err == nil {
		t.Fatalf("expected error for pin shorter than %d", MinPINLength)
	}
}

func TestPINHasherDefaultsBadCost(t *testing.T) {
	hasher := NewPINHasher(-1)
	if hasher.cost != DefaultPINCost {
		t.Fatalf("expected cost %d, got %d", DefaultPINCost, hasher.cost)
	}
}
