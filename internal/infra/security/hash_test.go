package security

import (
	"strings"
	"testing"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s8#Kp2!vQz")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if !strings.Contains(hash, ":") {
		t.Fatalf("expected salt:hash encoding, got %q", hash)
	}

	ok, err := VerifyPassword("s8#Kp2!vQz", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected password to verify")
	}
}

func TestVerifyPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("s8#Kp2!vQz")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	ok, err := VerifyPassword("different-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword returned error: %v", err)
	}
	if ok {
		t.Fatal("expected verification to fail")
	}
}

func TestHashPasswordSaltsAreUnique(t *testing.T) {
	first, err := HashPassword("s8#Kp2!vQz")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	second, err := HashPassword("s8#Kp2!vQz")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	if first == second {
		t.Fatal("expected distinct salts to yield distinct encodings")
	}
}

func TestVerifyPasswordMalformedEncoding(t *testing.T) {
	if _, err := VerifyPassword("whatever", "not-an-encoded-hash"); err == nil {
		t.Fatal("expected error for malformed encoding")
	}
}
