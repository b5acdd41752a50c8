package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names a user can hold. Every user gets a buyer role at
// registration; seller and admin are granted later.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

// Account statuses.
const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusSuspended = "suspended"
)

// Role assignment statuses.
const (
	RoleStatusActive  = "active"
	RoleStatusPending = "pending"
	RoleStatusRevoked = "revoked"
)

// Seller application statuses.
const (
	ApplicationPending  = "pending"
	ApplicationApproved = "approved"
	ApplicationRejected = "rejected"
)

type User struct {
	gorm.Model
	Username                  string `gorm:"uniqueIndex;not null" json:"username"`
	Email                     string `gorm:"uniqueIndex;not null" json:"email"`
	Phone                     string `json:"phone,omitempty"`
	PasswordHash              string `gorm:"not null" json:"-"`
	IsVerified                bool   `gorm:"default:false" json:"is_verified"`
	VerificationCode          string `json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`
	Status                    string     `gorm:"default:'active'" json:"status"`
	FailedLoginAttempts       int        `gorm:"default:0" json:"-"`
	LockedUntil               *time.Time `json:"-"`
	Roles                     []RoleAssignment `gorm:"foreignKey:UserID" json:"roles,omitempty"`
}

// IsLocked reports whether the account is currently locked out.
func (u *User) IsLocked() bool {
	return u.LockedUntil != nil && u.LockedUntil.After(time.Now())
}

// RoleAssignment records a user's eligibility for a named role.
// Login requires an assignment with Status active and CanLogin true.
type RoleAssignment struct {
	gorm.Model
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Role      string `gorm:"not null" json:"role"`
	IsPrimary bool   `gorm:"default:false" json:"is_primary"`
	Status    string `gorm:"default:'active'" json:"status"`
	CanLogin  bool   `gorm:"default:true" json:"can_login"`
}

// SellerApplication is a request to have the seller role granted.
// At most one pending application per user at a time.
type SellerApplication struct {
	gorm.Model
	UserID       uint   `gorm:"index;not null" json:"user_id"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	Status       string `gorm:"default:'pending'" json:"status"`
}

// BusinessTypes is the fixed set of categories a seller can register under.
var BusinessTypes = []string{
	"electronics",
	"fashion",
	"vehicles",
	"property",
	"furniture",
	"agriculture",
	"art_collectibles",
	"jewelry",
	"books_media",
	"sports_outdoors",
	"industrial",
	"services",
	"general_merchandise",
}

// ValidBusinessType reports whether t is a recognized business type.
func ValidBusinessType(t string) bool {
	for _, bt := range BusinessTypes {
		if bt == t {
			return true
		}
	}
	return false
}

// LoginAudit is a best-effort record of a successful login.
// Failure to write one never aborts the login itself.
type LoginAudit struct {
	gorm.Model
	UserID    uint   `gorm:"index;not null" json:"user_id"`
	Role      string `json:"role"`
	SessionID uint   `json:"session_id"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
}

// BuyerProfile is the role-specific profile returned for buyer logins.
type BuyerProfile struct {
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	MemberSince time.Time `json:"member_since"`
}

// SellerProfile joins the user record with the approved seller application.
type SellerProfile struct {
	UserID       uint      `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	BusinessName string    `json:"business_name"`
	BusinessType string    `json:"business_type"`
	ApprovedAt   time.Time `json:"approved_at"`
}

// RegisterInput is the payload accepted by the registration endpoint.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

// LoginInput is the payload accepted by the login endpoint.
type LoginInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	LoginRole string `json:"login_role"`
}
