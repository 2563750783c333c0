package auth_test

import (
	"testing"
	"time"

	"github.com/harborcrest/pms/internal/platform/auth"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	token, err := auth.NewAccessToken(42, "frontdesk", []string{"front_desk"}, "secret", time.Now())
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	claims, err := auth.ParseAccessToken(token, "secret")
	if err != nil {
		t.Fatalf("ParseAccessToken: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 42 {
		t.Errorf("UserID = %d, %v; want 42", id, err)
	}
	if claims.Username != "frontdesk" {
		t.Errorf("Username = %q", claims.Username)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != "front_desk" {
		t.Errorf("Roles = %v", claims.Roles)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := auth.NewAccessToken(1, "u", nil, "secret", time.Now())
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := auth.ParseAccessToken(token, "other-secret"); err == nil {
		t.Error("token signed with a different secret should not parse")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	issued := time.Now().Add(-2 * auth.AccessTokenTTL)
	token, err := auth.NewAccessToken(1, "u", nil, "secret", issued)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := auth.ParseAccessToken(token, "secret"); err == nil {
		t.Error("expired token should not parse")
	}
}
