package auth

import (
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/config"
)

// Config holds the tunable limits of the authentication flows.
type Config struct {
	// Login throttle per client IP.
	LoginMaxAttempts int
	LoginWindow      time.Duration

	// Advisory counter for failed logins per username, tracked before
	// the account is even known to exist.
	FailedLoginMaxAttempts int
	FailedLoginWindow      time.Duration

	// Registration throttle per client IP.
	SignupMaxAttempts int
	SignupWindow      time.Duration

	// Verification throttle per user id.
	VerifyMaxAttempts int
	VerifyWindow      time.Duration

	// Account lockout after consecutive wrong passwords.
	MaxFailedLogins int
	LockoutDuration time.Duration

	SessionTTL          time.Duration
	VerificationCodeTTL time.Duration

	// ReturnVerificationCode controls whether the registration response
	// carries the code inline instead of relying on a delivery channel.
	// Never enabled in production.
	ReturnVerificationCode bool
}

// DefaultConfig returns the standard limits, reading overrides from the
// environment.
func DefaultConfig() Config {
	return Config{
		LoginMaxAttempts:       config.GetIntEnv("LOGIN_MAX_ATTEMPTS", 10),
		LoginWindow:            config.GetDurationEnv("LOGIN_WINDOW", 300*time.Second),
		FailedLoginMaxAttempts: config.GetIntEnv("FAILED_LOGIN_MAX_ATTEMPTS", 5),
		FailedLoginWindow:      config.GetDurationEnv("FAILED_LOGIN_WINDOW", 900*time.Second),
		SignupMaxAttempts:      config.GetIntEnv("SIGNUP_MAX_ATTEMPTS", 3),
		SignupWindow:           config.GetDurationEnv("SIGNUP_WINDOW", 300*time.Second),
		VerifyMaxAttempts:      config.GetIntEnv("VERIFY_MAX_ATTEMPTS", 5),
		VerifyWindow:           config.GetDurationEnv("VERIFY_WINDOW", 300*time.Second),
		MaxFailedLogins:        config.GetIntEnv("MAX_FAILED_LOGINS", 5),
		LockoutDuration:        config.GetDurationEnv("LOCKOUT_DURATION", 30*time.Minute),
		SessionTTL:             config.GetDurationEnv("SESSION_TTL", 30*24*time.Hour),
		VerificationCodeTTL:    config.GetDurationEnv("VERIFICATION_CODE_TTL", time.Hour),
		ReturnVerificationCode: !config.IsProduction(),
	}
}
