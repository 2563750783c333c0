package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/platform/auth"
	"github.com/harborcrest/pms/internal/service"
	"github.com/harborcrest/pms/pkg/logger"
)

type ctxKey string

const (
	ctxClaims ctxKey = "claims"
	ctxUserID ctxKey = "user_id"
)

// Guard owns the authentication and authorization middlewares.
type Guard struct {
	secret string
	rbac   *service.RBACService
}

func NewGuard(secret string, rbac *service.RBACService) *Guard {
	return &Guard{secret: secret, rbac: rbac}
}

// RequireAuth verifies the bearer token and annotates the context with the
// caller's claims and user id.
func (g *Guard) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			response.Unauthorized(w, "missing bearer token")
			return
		}
		claims, err := auth.ParseAccessToken(strings.TrimPrefix(authz, "Bearer "), g.secret)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}
		userID, err := claims.UserID()
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxClaims, claims)
		ctx = context.WithValue(ctx, ctxUserID, userID)
		ctx = context.WithValue(ctx, logger.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission gates on an exact permission; the rbac service applies
// the resource:manage fallback and the super-admin bypass.
func (g *Guard) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r)
			if !ok {
				response.Unauthorized(w, "missing bearer token")
				return
			}
			allowed, err := g.rbac.Can(r.Context(), userID, permission)
			if err != nil {
				response.Error(w, err)
				return
			}
			if !allowed {
				response.Forbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserID(r)
			if !ok {
				response.Unauthorized(w, "missing bearer token")
				return
			}
			has, err := g.rbac.HasRole(r.Context(), userID, role)
			if err != nil {
				response.Error(w, err)
				return
			}
			if !has {
				response.Forbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return g.RequireRole("admin")(next)
}

func (g *Guard) RequireSuperAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := UserID(r)
		if !ok {
			response.Unauthorized(w, "missing bearer token")
			return
		}
		super, err := g.rbac.IsSuperAdmin(r.Context(), userID)
		if err != nil {
			response.Error(w, err)
			return
		}
		if !super {
			response.Forbidden(w, "insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID returns the authenticated caller's id, if any.
func UserID(r *http.Request) (int64, bool) {
	v := r.Context().Value(ctxUserID)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// Claims returns the verified JWT claims, or nil outside RequireAuth.
func Claims(r *http.Request) *auth.Claims {
	v := r.Context().Value(ctxClaims)
	if v == nil {
		return nil
	}
	return v.(*auth.Claims)
}
