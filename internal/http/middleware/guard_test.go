package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/platform/auth"
)

const testSecret = "test-secret"

func authedHandler(t *testing.T, wantUserID int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.UserID(r)
		if !ok {
			t.Error("user id missing from context")
		}
		if id != wantUserID {
			t.Errorf("user id = %d, want %d", id, wantUserID)
		}
		claims := middleware.Claims(r)
		if claims == nil {
			t.Error("claims missing from context")
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	guard := middleware.NewGuard(testSecret, nil)
	token, err := auth.NewAccessToken(42, "frontdesk", []string{"front_desk"}, testSecret, time.Now())
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	guard.RequireAuth(authedHandler(t, 42)).ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestRequireAuthRejectsMissingHeader(t *testing.T) {
	guard := middleware.NewGuard(testSecret, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	called := false
	guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if called {
		t.Error("next handler must not run without a token")
	}
}

func TestRequireAuthRejectsBadToken(t *testing.T) {
	guard := middleware.NewGuard(testSecret, nil)

	for _, header := range []string{
		"Bearer not-a-jwt",
		"Basic dXNlcjpwYXNz",
		"Bearer ",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()

		guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("next handler ran for header %q", header)
		})).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestRequireAuthRejectsForeignSecret(t *testing.T) {
	guard := middleware.NewGuard(testSecret, nil)
	token, err := auth.NewAccessToken(42, "frontdesk", nil, "other-secret", time.Now())
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	guard.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
