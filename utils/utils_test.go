package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPasswordWithCost("bridge-2026", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPasswordWithCost() error = %v", err)
	}
	if !CheckPasswordHash("bridge-2026", hash) {
		t.Error("CheckPasswordHash(correct) = false")
	}
	if CheckPasswordHash("wrong", hash) {
		t.Error("CheckPasswordHash(wrong) = true")
	}
}

func TestIsValidEmail(t *testing.T) {
	cases := map[string]bool{
		"judge@example.com": true,
		"Judge <j@x.com>":   false,
		"not-an-address":    false,
		"":                  false,
	}
	for in, want := range cases {
		if got := IsValidEmail(in); got != want {
			t.Errorf("IsValidEmail(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Admin@Example.COM "); got != "admin@example.com" {
		t.Errorf("NormalizeEmail() = %q", got)
	}
}
