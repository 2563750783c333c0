package auth_test

import (
	"regexp"
	"testing"

	"github.com/harborcrest/pms/internal/platform/auth"
)

func TestNewOpaqueToken(t *testing.T) {
	a, err := auth.NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	b, err := auth.NewOpaqueToken()
	if err != nil {
		t.Fatalf("NewOpaqueToken: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(a))
	}
	if a == b {
		t.Error("two tokens should not collide")
	}
}

func TestHashTokenDeterministic(t *testing.T) {
	if auth.HashToken("abc") != auth.HashToken("abc") {
		t.Error("same input should hash identically")
	}
	if auth.HashToken("abc") == auth.HashToken("abd") {
		t.Error("different inputs should hash differently")
	}
	if len(auth.HashToken("abc")) != 64 {
		t.Error("digest should be 64 hex chars")
	}
}

func TestNewRecoveryCodes(t *testing.T) {
	codes, err := auth.NewRecoveryCodes(10)
	if err != nil {
		t.Fatalf("NewRecoveryCodes: %v", err)
	}
	if len(codes) != 10 {
		t.Fatalf("got %d codes, want 10", len(codes))
	}
	format := regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}$`)
	seen := make(map[string]bool)
	for _, c := range codes {
		if !format.MatchString(c) {
			t.Errorf("code %q does not match XXXX-XXXX", c)
		}
		if seen[c] {
			t.Errorf("duplicate code %q", c)
		}
		seen[c] = true
	}
}
