package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/harborcrest/pms/internal/apperr"
	"github.com/harborcrest/pms/internal/domain"
	"github.com/harborcrest/pms/internal/platform/auth"
	"github.com/harborcrest/pms/internal/platform/mailer"
	"github.com/harborcrest/pms/internal/platform/sanitize"
	"github.com/harborcrest/pms/internal/repo/postgres"
	"github.com/harborcrest/pms/pkg/clock"
	"github.com/harborcrest/pms/pkg/config"
	"github.com/harborcrest/pms/pkg/logger"
)

type IdentityService struct {
	pool    *pgxpool.Pool
	users   postgres.UsersRepo
	guests  postgres.GuestsRepo
	rbac    postgres.RBACRepo
	refresh postgres.RefreshRepo
	loyalty postgres.LoyaltyRepo
	mail    mailer.Service
	audit   *AuditLogService
	clock   clock.Clock
	cfg     config.AuthConfig
}

func NewIdentityService(
	pool *pgxpool.Pool,
	users postgres.UsersRepo,
	guests postgres.GuestsRepo,
	rbac postgres.RBACRepo,
	refresh postgres.RefreshRepo,
	loyalty postgres.LoyaltyRepo,
	mail mailer.Service,
	audit *AuditLogService,
	c clock.Clock,
	cfg config.AuthConfig,
) *IdentityService {
	return &IdentityService{
		pool: pool, users: users, guests: guests, rbac: rbac,
		refresh: refresh, loyalty: loyalty, mail: mail, audit: audit,
		clock: c, cfg: cfg,
	}
}

type RegisterResult struct {
	User              domain.UserInfo `json:"user"`
	GuestID           int64           `json:"guestId"`
	VerificationToken string          `json:"verificationToken"`
}

// Register creates the guest profile, the user account, the verification
// token, the guest role, and a tier-1 loyalty membership in one
// transaction.
func (s *IdentityService) Register(ctx context.Context, req *domain.RegisterRequest) (*RegisterResult, error) {
	username := sanitize.Text(strings.TrimSpace(req.Username))
	email := sanitize.Email(req.Email)
	firstName := sanitize.Name(req.FirstName)
	lastName := sanitize.Name(req.LastName)

	if username == "" || email == "" {
		return nil, apperr.BadRequest("username and email are required")
	}
	if firstName == "" || lastName == "" {
		return nil, apperr.BadRequest("first and last name are required")
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	var phone *string
	if p := sanitize.Phone(req.Phone); p != "" {
		if !sanitize.ValidPhone(p) {
			return nil, apperr.BadRequest("invalid phone number")
		}
		phone = &p
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	verifyToken, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.clock.Now()
	var result RegisterResult

	err = postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		exists, err := s.users.Exists(ctx, tx, username, email)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflict("username or email already registered")
		}

		guest, err := s.guests.Create(ctx, tx, &domain.GuestInput{
			FirstName: firstName,
			LastName:  lastName,
			Email:     &email,
			Phone:     phone,
		})
		if err != nil {
			return err
		}

		fullName := guest.FullName()
		user, err := s.users.Create(ctx, tx, username, email, hash, fullName, phone, domain.UserTypeGuest)
		if err != nil {
			return err
		}
		if err := s.users.LinkGuest(ctx, tx, user.ID, guest.ID); err != nil {
			return err
		}
		if err := s.users.SetEmailVerification(ctx, tx, user.ID, verifyToken, now.Add(s.cfg.EmailVerificationTTL)); err != nil {
			return err
		}

		guestRole, err := s.rbac.GetRoleByName(ctx, "guest")
		if err != nil {
			return err
		}
		if guestRole != nil {
			if err := s.rbac.AssignRole(ctx, tx, user.ID, guestRole.ID); err != nil {
				return err
			}
		}

		program, err := s.loyalty.DefaultProgram(ctx, tx)
		if err != nil {
			return err
		}
		if program != nil && program.Tier == 1 {
			_, err = s.loyalty.Enroll(ctx, tx, &domain.LoyaltyMembership{
				GuestID:          guest.ID,
				ProgramID:        program.ID,
				MembershipNumber: fmt.Sprintf("LM-%08d", guest.ID),
			})
			if err != nil {
				return err
			}
		}

		roles := []string{}
		if guestRole != nil {
			roles = append(roles, guestRole.Name)
		}
		result = RegisterResult{
			User:              user.ToUserInfo(roles),
			GuestID:           guest.ID,
			VerificationToken: verifyToken,
		}
		return nil
	})
	if err != nil {
		if postgres.IsUniqueViolation(err) {
			return nil, apperr.Conflict("username or email already registered")
		}
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}

	if err := s.mail.SendVerification(email, firstName, verifyToken); err != nil {
		logger.WarnContext(ctx, "verification email failed", "error", err)
	}
	return &result, nil
}

// Login authenticates by username or email, enforcing verification,
// 2FA, and soft-delete gates, then issues an access/refresh pair.
func (s *IdentityService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	user, err := s.users.FindByLogin(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		s.audit.Append(ctx, nil, domain.ActionLoginFailure, "user", nil, map[string]string{"login": req.Username})
		return nil, apperr.Unauthorized("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Unauthorized("account is disabled")
	}
	if !user.IsVerified && !s.cfg.SkipEmailVerification {
		return nil, apperr.Unauthorized("email not verified")
	}

	if user.TwoFactorEnabled {
		if err := s.checkSecondFactor(ctx, user, req); err != nil {
			s.audit.Append(ctx, &user.ID, domain.ActionLoginFailure, "user", &user.ID, map[string]string{"reason": "2fa"})
			return nil, err
		}
	}

	resp, err := s.issuePair(ctx, nil, user)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if err := s.users.RecordLogin(ctx, user.ID, now); err != nil {
		logger.WarnContext(ctx, "record login failed", "user_id", user.ID, "error", err)
	}
	s.audit.Append(ctx, &user.ID, domain.ActionLoginSuccess, "user", &user.ID, nil)
	return resp, nil
}

func (s *IdentityService) checkSecondFactor(ctx context.Context, user *domain.User, req *domain.LoginRequest) error {
	if req.RecoveryCode != "" {
		digest := auth.HashToken(strings.ToUpper(strings.TrimSpace(req.RecoveryCode)))
		remaining := make([]string, 0, len(user.TwoFactorRecoveryCodes))
		found := false
		for _, d := range user.TwoFactorRecoveryCodes {
			if !found && d == digest {
				found = true
				continue
			}
			remaining = append(remaining, d)
		}
		if !found {
			return apperr.Unauthorized("invalid recovery code")
		}
		if err := s.users.UpdateRecoveryCodes(ctx, user.ID, remaining); err != nil {
			return apperr.Internal(err)
		}
		return nil
	}

	if req.TOTPCode == "" {
		return apperr.Unauthorized("two-factor code required")
	}
	if user.TwoFactorSecret == nil || !auth.VerifyTOTPCode(*user.TwoFactorSecret, req.TOTPCode, s.clock.Now()) {
		return apperr.Unauthorized("invalid two-factor code")
	}
	return nil
}

// issuePair mints a JWT with a role snapshot plus a stored refresh token.
// When q is non-nil the refresh insert joins the caller's transaction.
func (s *IdentityService) issuePair(ctx context.Context, q postgres.Querier, user *domain.User) (*domain.LoginResponse, error) {
	roles, err := s.rbac.UserRoleNames(ctx, user.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	now := s.clock.Now()
	jwtToken, err := auth.NewAccessToken(user.ID, user.Username, roles, s.cfg.JWTSecret, now)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refreshToken, err := auth.NewOpaqueToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.refresh.Store(ctx, q, user.ID, auth.HashToken(refreshToken), now.Add(s.cfg.RefreshTokenTTL)); err != nil {
		return nil, apperr.Internal(err)
	}

	return &domain.LoginResponse{
		AccessToken:  jwtToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
		User:         user.ToUserInfo(roles),
	}, nil
}

// Refresh rotates a refresh token. Concurrent presentations of the same
// token resolve to at most one winner; losers see unauthorized.
func (s *IdentityService) Refresh(ctx context.Context, token string) (*domain.LoginResponse, error) {
	var resp *domain.LoginResponse

	err := postgres.InSerializableTx(ctx, s.pool, func(tx pgx.Tx) error {
		userID, err := s.refresh.ConsumeForRotation(ctx, tx, auth.HashToken(token), s.clock.Now())
		if err != nil {
			return err
		}
		if userID == 0 {
			return apperr.Unauthorized("invalid refresh token")
		}

		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil || !user.IsActive {
			return apperr.Unauthorized("invalid refresh token")
		}

		resp, err = s.issuePair(ctx, tx, user)
		return err
	})
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			return nil, err
		}
		return nil, apperr.Internal(err)
	}
	return resp, nil
}

func (s *IdentityService) Logout(ctx context.Context, token string) error {
	if err := s.refresh.Revoke(ctx, auth.HashToken(token), s.clock.Now()); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *IdentityService) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.refresh.RevokeAllForUser(ctx, userID, s.clock.Now()); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// VerifyEmail consumes a one-shot verification token.
func (s *IdentityService) VerifyEmail(ctx context.Context, token string) error {
	userID, err := s.users.ConsumeEmailVerification(ctx, token, s.clock.Now())
	if err != nil {
		return apperr.Internal(err)
	}
	if userID == 0 {
		return apperr.BadRequest("invalid or expired verification token")
	}
	return nil
}

// ResendVerification mints a fresh token for an unverified account. The
// response never reveals whether the email exists.
func (s *IdentityService) ResendVerification(ctx context.Context, email string) error {
	email = sanitize.Email(email)
	if email == "" {
		return apperr.BadRequest("email is required")
	}

	user, err := s.users.FindByLogin(ctx, email)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil || user.IsVerified {
		return nil
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.SetEmailVerification(ctx, nil, user.ID, token, s.clock.Now().Add(s.cfg.EmailVerificationTTL)); err != nil {
		return apperr.Internal(err)
	}

	name := user.Username
	if user.FullName != nil {
		name = *user.FullName
	}
	if err := s.mail.SendVerification(user.Email, name, token); err != nil {
		logger.WarnContext(ctx, "verification email failed", "error", err)
	}
	return nil
}

func (s *IdentityService) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("user not found")
	}
	if !auth.VerifyPassword(current, user.PasswordHash) {
		return apperr.Unauthorized("current password is incorrect")
	}
	if err := auth.ValidatePassword(next); err != nil {
		return err
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return apperr.Internal(err)
	}
	s.audit.Append(ctx, &userID, domain.ActionPasswordChanged, "user", &userID, nil)
	return nil
}

type TwoFactorSetup struct {
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

type TwoFactorEnabled struct {
	RecoveryCodes []string `json:"recoveryCodes"`
}

// Setup2FA generates a secret and provisioning URI. The secret is not
// stored until the user confirms a code via Enable2FA.
func (s *IdentityService) Setup2FA(ctx context.Context, userID int64) (*TwoFactorSetup, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	if user.TwoFactorEnabled {
		return nil, apperr.Conflict("two-factor authentication is already enabled")
	}

	secret, uri, err := auth.GenerateTOTPSecret(user.Username)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &TwoFactorSetup{Secret: secret, URI: uri}, nil
}

// Enable2FA confirms the setup code and stores the secret plus ten
// single-use recovery codes, returned in the clear exactly once.
func (s *IdentityService) Enable2FA(ctx context.Context, userID int64, secret, code string) (*TwoFactorEnabled, error) {
	if !auth.VerifyTOTPCode(secret, code, s.clock.Now()) {
		return nil, apperr.Unauthorized("invalid two-factor code")
	}

	codes, err := auth.NewRecoveryCodes(10)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	digests := make([]string, len(codes))
	for i, c := range codes {
		digests[i] = auth.HashToken(c)
	}

	if err := s.users.Enable2FA(ctx, userID, secret, digests); err != nil {
		return nil, apperr.Internal(err)
	}
	return &TwoFactorEnabled{RecoveryCodes: codes}, nil
}

func (s *IdentityService) Disable2FA(ctx context.Context, userID int64, password, code string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if user == nil {
		return apperr.NotFound("user not found")
	}
	if !user.TwoFactorEnabled || user.TwoFactorSecret == nil {
		return apperr.BadRequest("two-factor authentication is not enabled")
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return apperr.Unauthorized("current password is incorrect")
	}
	if !auth.VerifyTOTPCode(*user.TwoFactorSecret, code, s.clock.Now()) {
		return apperr.Unauthorized("invalid two-factor code")
	}
	if err := s.users.Disable2FA(ctx, userID); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *IdentityService) Me(ctx context.Context, userID int64) (*domain.UserInfo, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if user == nil {
		return nil, apperr.NotFound("user not found")
	}
	roles, err := s.rbac.UserRoleNames(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	info := user.ToUserInfo(roles)
	return &info, nil
}
