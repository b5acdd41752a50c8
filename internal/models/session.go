package models

import (
	"time"

	"gorm.io/gorm"
)

// Session is a server-side login session. Created on successful login,
// read on each authenticated request, deleted on logout or expiry.
type Session struct {
	gorm.Model
	UserID            uint      `gorm:"index;not null" json:"user_id"`
	Token             string    `gorm:"uniqueIndex;not null" json:"-"`
	RefreshToken      string    `gorm:"uniqueIndex;not null" json:"-"`
	LoginRole         string    `json:"login_role"`
	DeviceFingerprint string    `gorm:"index" json:"device_fingerprint"`
	DeviceType        string    `json:"device_type"`
	Browser           string    `json:"browser"`
	OperatingSystem   string    `json:"operating_system"`
	IPAddress         string    `json:"ip_address"`
	UserAgent         string    `json:"-"`
	ExpiresAt         time.Time `gorm:"index" json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Summary is the client-facing view of a session.
func (s *Session) Summary() map[string]interface{} {
	return map[string]interface{}{
		"id":               s.ID,
		"login_role":       s.LoginRole,
		"device_type":      s.DeviceType,
		"browser":          s.Browser,
		"operating_system": s.OperatingSystem,
		"ip_address":       s.IPAddress,
		"created_at":       s.CreatedAt,
		"expires_at":       s.ExpiresAt,
	}
}
