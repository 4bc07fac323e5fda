package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "secret1" || hash == "" {
		t.Fatalf("hash looks wrong: %q", hash)
	}

	ok, err := h.Verify("secret1", hash)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatalf("Verify: expected true for correct password")
	}
}

func TestPasswordHasher_SaltUniqueness(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	h1, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash(1): %v", err)
	}
	h2, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("Hash(2): %v", err)
	}
	if h1 == h2 {
		t.Fatalf("two hashes of the same password are equal — salt is not fresh")
	}

	for _, hash := range []string{h1, h2} {
		ok, err := h.Verify("same-password", hash)
		if err != nil || !ok {
			t.Fatalf("Verify(%q): ok=%v err=%v", hash, ok, err)
		}
	}
}

func TestPasswordHasher_Mismatch(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("right")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	ok, err := h.Verify("wrong", hash)
	if err != nil {
		t.Fatalf("mismatch must not be an error, got %v", err)
	}
	if ok {
		t.Fatalf("Verify: expected false for wrong password")
	}

	ok, err = h.Verify("", hash)
	if err != nil || ok {
		t.Fatalf("Verify empty password: ok=%v err=%v", ok, err)
	}
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)

	_, err := h.Verify("whatever", "not-a-bcrypt-hash")
	if !errors.Is(err, ErrHashing) {
		t.Fatalf("want ErrHashing for malformed hash, got %v", err)
	}
}

func TestNewPasswordHasher_CostFallback(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(99)
	if h.cost != bcrypt.DefaultCost {
		t.Fatalf("cost=%d, want default %d", h.cost, bcrypt.DefaultCost)
	}
}
