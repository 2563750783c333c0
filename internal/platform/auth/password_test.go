package auth_test

import (
	"strings"
	"testing"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/platform/auth"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantMsg  string
	}{
		{"too short", "Ab1!", "Password must be at least 8 characters long"},
		{"too long", strings.Repeat("Ab1!", 40), "Password must not exceed 128 characters"},
		{"no uppercase", "lowercase1!", "Password must contain at least one uppercase letter"},
		{"no lowercase", "UPPERCASE1!", "Password must contain at least one lowercase letter"},
		{"no digit", "NoDigits!!", "Password must contain at least one number"},
		{"no special", "NoSpecial123", "Password must contain at least one special character"},
		{"weak substring", "Password123!", "Password is too common or weak"},
		{"valid", "Str0ng&Secure", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := auth.ValidatePassword(tc.password)
			if tc.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !apperr.IsKind(err, apperr.KindBadRequest) {
				t.Errorf("kind = %v, want bad_request", apperr.KindOf(err))
			}
			if got := apperr.MessageOf(err); got != tc.wantMsg {
				t.Errorf("message = %q, want %q", got, tc.wantMsg)
			}
		})
	}
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("Str0ng&Secure")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "Str0ng&Secure" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !auth.VerifyPassword("Str0ng&Secure", hash) {
		t.Error("correct password should verify")
	}
	if auth.VerifyPassword("WrongPass1!", hash) {
		t.Error("wrong password should not verify")
	}
}
