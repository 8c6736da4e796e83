package domain

import "time"

type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleVendor   UserRole = "vendor"
	RoleAdmin    UserRole = "admin"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID                int64      `json:"id" gorm:"primaryKey"`
	FullName          string     `json:"fullName" gorm:"size:120;not null"`
	Email             string     `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Phone             *string    `json:"phone,omitempty" gorm:"size:20;uniqueIndex"`
	PasswordHash      string     `json:"-" gorm:"not null"`
	Role              UserRole   `json:"role" gorm:"size:20;index;not null"`
	IsActive          bool       `json:"isActive" gorm:"not null;default:false"`
	EmailVerified     bool       `json:"emailVerified" gorm:"not null;default:false"`
	EmailVerifiedAt   *time.Time `json:"emailVerifiedAt,omitempty"`
	VerificationToken *string    `json:"-" gorm:"size:64;index"`
	GoogleID          *string    `json:"-" gorm:"size:64;uniqueIndex"`
	AvatarURL         string     `json:"avatarUrl,omitempty" gorm:"size:512"`
	LastLoginAt       *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// PhoneValue returns the phone number or an empty string for accounts without one.
func (u *User) PhoneValue() string {
	if u.Phone == nil {
		return ""
	}
	return *u.Phone
}

// EmailVerificationToken keeps the hash of every issued verification token so a
// replayed token can be told apart from an unknown one after it has been
// cleared from users.verification_token.
type EmailVerificationToken struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"index;not null"`
	TokenHash string     `gorm:"size:64;uniqueIndex;not null"`
	ExpiresAt time.Time  `gorm:"index;not null"`
	UsedAt    *time.Time `gorm:"index"`
	CreatedAt time.Time
}

func (EmailVerificationToken) TableName() string { return "email_verification_tokens" }
