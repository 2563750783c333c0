package domain

import "time"

type UserType string

const (
	UserTypeStaff UserType = "staff"
	UserTypeGuest UserType = "guest"
)

type User struct {
	ID                     int64      `json:"id"`
	Username               string     `json:"username"`
	Email                  string     `json:"email"`
	PasswordHash           string     `json:"-"`
	FullName               *string    `json:"fullName,omitempty"`
	Phone                  *string    `json:"phone,omitempty"`
	IsActive               bool       `json:"isActive"`
	IsVerified             bool       `json:"isVerified"`
	UserType               UserType   `json:"userType"`
	IsSuperAdmin           bool       `json:"isSuperAdmin"`
	TwoFactorEnabled       bool       `json:"twoFactorEnabled"`
	TwoFactorSecret        *string    `json:"-"`
	TwoFactorRecoveryCodes []string   `json:"-"` // SHA-256 digests
	LastLoginAt            *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
	DeletedAt              *time.Time `json:"-"`
}

// UserInfo is the public projection returned by auth endpoints.
type UserInfo struct {
	ID           int64    `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	FullName     *string  `json:"fullName,omitempty"`
	UserType     UserType `json:"userType"`
	IsVerified   bool     `json:"isVerified"`
	IsSuperAdmin bool     `json:"isSuperAdmin"`
	Roles        []string `json:"roles"`
}

func (u *User) ToUserInfo(roles []string) UserInfo {
	if roles == nil {
		roles = []string{}
	}
	return UserInfo{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		FullName:     u.FullName,
		UserType:     u.UserType,
		IsVerified:   u.IsVerified,
		IsSuperAdmin: u.IsSuperAdmin,
		Roles:        roles,
	}
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone,omitempty"`
}

type LoginRequest struct {
	Username     string `json:"username"` // username or email
	Password     string `json:"password"`
	TOTPCode     string `json:"totpCode,omitempty"`
	RecoveryCode string `json:"recoveryCode,omitempty"`
}

type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"`
	User         UserInfo `json:"user"`
}

type RefreshToken struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"userId"`
	TokenHash string     `json:"-"`
	ExpiresAt time.Time  `json:"expiresAt"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
