package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/http/middleware"
	"github.com/harborcrest/pms/internal/http/response"
	"github.com/harborcrest/pms/internal/service"
)

type AuthHandler struct {
	Identity *service.IdentityService
	Guard    *middleware.Guard
	Limiter  *middleware.RateLimiter
}

func NewAuthHandler(identity *service.IdentityService, guard *middleware.Guard, limiter *middleware.RateLimiter) *AuthHandler {
	return &AuthHandler{Identity: identity, Guard: guard, Limiter: limiter}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(h.Limiter.Limit("auth"))
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)
		r.Post("/verify-email", h.verifyEmail)
		r.Post("/resend-verification", h.resendVerification)
	})
	r.Post("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.Guard.RequireAuth)
		r.Get("/me", h.me)
		r.Post("/logout-all", h.logoutAll)
		r.Post("/change-password", h.changePassword)
		r.Post("/2fa/setup", h.setup2FA)
		r.Post("/2fa/enable", h.enable2FA)
		r.Post("/2fa/disable", h.disable2FA)
	})
	return r
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	result, err := h.Identity.Register(r.Context(), &req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	resp, err := h.Identity.Login(r.Context(), &req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(w, "refresh token is required")
		return
	}
	resp, err := h.Identity.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		response.BadRequest(w, "refresh token is required")
		return
	}
	if err := h.Identity.Logout(r.Context(), req.RefreshToken); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) logoutAll(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	if err := h.Identity.LogoutAll(r.Context(), userID); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "all sessions revoked"})
}

func (h *AuthHandler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		req.Token = r.URL.Query().Get("token")
	}
	if req.Token == "" {
		response.BadRequest(w, "token is required")
		return
	}
	if err := h.Identity.VerifyEmail(r.Context(), req.Token); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "email verified"})
}

func (h *AuthHandler) resendVerification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Identity.ResendVerification(r.Context(), req.Email); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "if the account exists, a verification email was sent"})
}

func (h *AuthHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Identity.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	info, err := h.Identity.Me(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, info)
}

func (h *AuthHandler) setup2FA(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	setup, err := h.Identity.Setup2FA(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, setup)
}

func (h *AuthHandler) enable2FA(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	var req struct {
		Secret string `json:"secret"`
		Code   string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Secret == "" || req.Code == "" {
		response.BadRequest(w, "secret and code are required")
		return
	}
	enabled, err := h.Identity.Enable2FA(r.Context(), userID, req.Secret, req.Code)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, enabled)
}

func (h *AuthHandler) disable2FA(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r)
	var req struct {
		Password string `json:"password"`
		Code     string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := h.Identity.Disable2FA(r.Context(), userID, req.Password, req.Code); err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{"message": "two-factor authentication disabled"})
}
