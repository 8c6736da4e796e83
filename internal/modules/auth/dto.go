package auth

import (
	"time"

	"evea/internal/domain"
)

type RegisterRequest struct {
	FullName string `json:"fullName" binding:"required,min=2,max=120"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"omitempty,in_phone"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID            int64           `json:"id"`
	FullName      string          `json:"fullName"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone,omitempty"`
	Role          domain.UserRole `json:"role"`
	IsActive      bool            `json:"isActive"`
	EmailVerified bool            `json:"emailVerified"`
	AvatarURL     string          `json:"avatarUrl,omitempty"`
	LastLoginAt   *time.Time      `json:"lastLoginAt,omitempty"`
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.PhoneValue(),
		Role:          u.Role,
		IsActive:      u.IsActive,
		EmailVerified: u.EmailVerified,
		AvatarURL:     u.AvatarURL,
		LastLoginAt:   u.LastLoginAt,
	}
}

type VendorSummary struct {
	ID                 int64                     `json:"id"`
	BusinessName       string                    `json:"businessName"`
	RegistrationStep   int                       `json:"registrationStep"`
	VerificationStatus domain.VerificationStatus `json:"verificationStatus"`
	City               string                    `json:"city,omitempty"`
}

func toVendorSummary(v *domain.Vendor) *VendorSummary {
	if v == nil {
		return nil
	}
	return &VendorSummary{
		ID:                 v.ID,
		BusinessName:       v.BusinessName,
		RegistrationStep:   v.RegistrationStep,
		VerificationStatus: v.VerificationStatus,
		City:               v.City,
	}
}

// Session is a signed-in user and the token that goes into the cookie.
type Session struct {
	User   *domain.User
	Vendor *domain.Vendor
	Token  string
}

func (s *Session) body() map[string]any {
	out := map[string]any{"user": ToUserResponse(s.User)}
	if s.Vendor != nil {
		out["vendor"] = toVendorSummary(s.Vendor)
	}
	return out
}
