// Package auth orchestrates registration, login, email verification and
// seller applications. Each flow runs a linear pipeline of checks; the
// first failing check produces a terminal *Error with the HTTP status
// the handler should answer with.
package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"
	"github.com/kalu-Peter/BidKE-sub002/internal/ratelimit"
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories"
	"github.com/kalu-Peter/BidKE-sub002/internal/utils"
	"github.com/kalu-Peter/BidKE-sub002/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// RateLimiter is the counter the auth flows throttle on.
// Satisfied by *ratelimit.Limiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, maxAttempts int, window time.Duration) (bool, error)
	Reset(ctx context.Context, keys ...string) error
}

type Service interface {
	Register(ctx context.Context, in *models.RegisterInput, clientIP string) (*RegisterResult, error)
	Login(ctx context.Context, in *models.LoginInput, clientIP, userAgent string) (*LoginResult, error)
	VerifyEmail(ctx context.Context, userID uint, code string) (*VerifyResult, error)
	ApplySeller(ctx context.Context, userID uint, businessName, businessType string) (*models.SellerApplication, error)
	RefreshToken(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, sessionID uint) error
	Profile(ctx context.Context, userID uint, role string) (interface{}, error)
	Sessions(ctx context.Context, userID uint) ([]models.Session, error)
}

// RegisterResult is the payload of a successful registration.
type RegisterResult struct {
	User                 *models.User            `json:"user"`
	Roles                []models.RoleAssignment `json:"roles"`
	VerificationRequired bool                    `json:"verification_required"`
	VerificationCode     string                  `json:"verification_code,omitempty"`
}

// LoginResult is the payload of a successful login.
type LoginResult struct {
	User           *models.User           `json:"user"`
	Token          string                 `json:"token"`
	RefreshToken   string                 `json:"refresh_token"`
	LoginRole      string                 `json:"login_role"`
	AvailableRoles []string               `json:"available_roles"`
	Profile        interface{}            `json:"profile"`
	Session        map[string]interface{} `json:"session"`
}

// VerifyResult is the payload of a successful email verification.
type VerifyResult struct {
	Verified        bool         `json:"verified"`
	AlreadyVerified bool         `json:"already_verified,omitempty"`
	User            *models.User `json:"user"`
}

type service struct {
	users    repositories.UserRepository
	sessions repositories.SessionRepository
	limiter  RateLimiter
	cfg      Config
}

func NewService(users repositories.UserRepository, sessions repositories.SessionRepository, limiter RateLimiter, cfg Config) Service {
	return &service{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		cfg:      cfg,
	}
}

// allow consults the rate limiter. Counter failures are logged and fail
// open: the limiter is a throttle, not a security boundary, and a Redis
// outage must not take logins down with it.
func (s *service) allow(ctx context.Context, key string, max int, window time.Duration) bool {
	ok, err := s.limiter.Allow(ctx, key, max, window)
	if err != nil {
		log.Printf("rate limiter unavailable for key %q: %v", key, err)
		return true
	}
	return ok
}

func (s *service) Register(ctx context.Context, in *models.RegisterInput, clientIP string) (*RegisterResult, error) {
	in.Username = strings.ToLower(validation.Sanitize(in.Username))
	in.Email = strings.ToLower(validation.Sanitize(in.Email))
	in.Phone = validation.Sanitize(in.Phone)

	// Field errors are collected in full rather than failing fast.
	v := validation.New()
	v.UserRegistration(in)
	if !v.Valid() {
		return nil, newErrorWithData(http.StatusBadRequest, "Validation failed",
			map[string]interface{}{"errors": v.Errors})
	}

	if !s.allow(ctx, ratelimit.SignupKey(clientIP), s.cfg.SignupMaxAttempts, s.cfg.SignupWindow) {
		return nil, errRateLimited
	}

	// Optimistic existence checks; the unique indexes are authoritative
	// and a lost race surfaces as the same conflict below.
	if taken, err := s.users.UsernameExists(in.Username); err != nil {
		log.Printf("username existence check failed: %v", err)
		return nil, errInternal
	} else if taken {
		return nil, newErrorWithData(http.StatusConflict, "Username already taken",
			map[string]interface{}{"field": "username"})
	}
	if taken, err := s.users.EmailExists(in.Email); err != nil {
		log.Printf("email existence check failed: %v", err)
		return nil, errInternal
	} else if taken {
		return nil, newErrorWithData(http.StatusConflict, "Email already registered",
			map[string]interface{}{"field": "email"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("password hashing failed: %v", err)
		return nil, errInternal
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Status:       models.StatusActive,
	}
	if err := s.users.Create(user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrUsernameTaken):
			return nil, newErrorWithData(http.StatusConflict, "Username already taken",
				map[string]interface{}{"field": "username"})
		case errors.Is(err, repositories.ErrEmailTaken):
			return nil, newErrorWithData(http.StatusConflict, "Email already registered",
				map[string]interface{}{"field": "email"})
		default:
			log.Printf("user create failed: %v", err)
			return nil, errInternal
		}
	}

	code, err := s.issueVerificationCode(user.ID)
	if err != nil {
		log.Printf("verification code issue failed for user %d: %v", user.ID, err)
		return nil, errInternal
	}

	roles, err := s.users.GetLoginRoles(user.ID)
	if err != nil {
		log.Printf("role lookup failed for user %d: %v", user.ID, err)
		roles = nil
	}

	result := &RegisterResult{
		User:                 user,
		Roles:                roles,
		VerificationRequired: true,
	}
	if s.cfg.ReturnVerificationCode {
		result.VerificationCode = code
	}
	return result, nil
}

func (s *service) issueVerificationCode(userID uint) (string, error) {
	code, err := utils.GenerateVerificationCode()
	if err != nil {
		return "", err
	}
	expiresAt := time.Now().Add(s.cfg.VerificationCodeTTL)
	if err := s.users.SetVerificationCode(userID, code, expiresAt); err != nil {
		return "", err
	}
	return code, nil
}

// Login runs the authentication state machine. The check order is fixed:
// field validation, role validation, IP throttle, user lookup, lock
// check, password check, verified check, status check, role eligibility,
// then session and token issuance.
func (s *service) Login(ctx context.Context, in *models.LoginInput, clientIP, userAgent string) (*LoginResult, error) {
	in.Username = strings.ToLower(validation.Sanitize(in.Username))

	v := validation.New()
	v.UserLogin(in)
	if !v.Valid() {
		return nil, newErrorWithData(http.StatusBadRequest, "Missing required fields",
			map[string]interface{}{"errors": v.Errors})
	}

	if in.LoginRole != models.RoleBuyer && in.LoginRole != models.RoleSeller && in.LoginRole != models.RoleAdmin {
		return nil, newError(http.StatusBadRequest, "Invalid login role")
	}

	if !s.allow(ctx, ratelimit.LoginKey(clientIP), s.cfg.LoginMaxAttempts, s.cfg.LoginWindow) {
		return nil, newError(http.StatusTooManyRequests, "Too many login attempts. Please try again later.")
	}

	user, err := s.users.GetByUsername(in.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Advisory counter only; it never blocks the lookup path and
			// the response must not reveal whether the account exists.
			s.allow(ctx, ratelimit.FailedLoginKey(in.Username), s.cfg.FailedLoginMaxAttempts, s.cfg.FailedLoginWindow)
			return nil, errInvalidCredentials
		}
		log.Printf("user lookup failed for %q: %v", in.Username, err)
		return nil, errInternal
	}

	if user.IsLocked() {
		return nil, newErrorWithData(http.StatusLocked, "Account temporarily locked",
			map[string]interface{}{"locked_until": user.LockedUntil})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		s.recordFailedPassword(user)
		return nil, errInvalidCredentials
	}

	if !user.IsVerified {
		return nil, newErrorWithData(http.StatusForbidden, "Email not verified",
			map[string]interface{}{"verification_required": true})
	}

	if user.Status != models.StatusActive {
		return nil, newErrorWithData(http.StatusForbidden, "Account is not active",
			map[string]interface{}{"status": user.Status})
	}

	roles, err := s.users.GetLoginRoles(user.ID)
	if err != nil {
		log.Printf("role lookup failed for user %d: %v", user.ID, err)
		return nil, errInternal
	}
	if len(roles) == 0 {
		return nil, newError(http.StatusForbidden, "No login-eligible roles for this account")
	}

	roleNames := make([]string, len(roles))
	eligible := false
	for i, r := range roles {
		roleNames[i] = r.Role
		if r.Role == in.LoginRole {
			eligible = true
		}
	}
	if !eligible {
		return nil, newErrorWithData(http.StatusForbidden, "Requested role not available for this account",
			map[string]interface{}{"available_roles": roleNames})
	}

	return s.issueSession(ctx, user, in.LoginRole, roleNames, clientIP, userAgent)
}

// recordFailedPassword bumps the per-user counter and locks the account
// once the lockout threshold is reached.
func (s *service) recordFailedPassword(user *models.User) {
	attempts, err := s.users.RecordFailedLogin(user.ID)
	if err != nil {
		log.Printf("failed-login increment failed for user %d: %v", user.ID, err)
		return
	}
	if attempts >= s.cfg.MaxFailedLogins {
		until := time.Now().Add(s.cfg.LockoutDuration)
		if err := s.users.LockAccount(user.ID, until); err != nil {
			log.Printf("account lock failed for user %d: %v", user.ID, err)
			return
		}
		log.Printf("account %d locked until %s after %d failed attempts", user.ID, until.Format(time.RFC3339), attempts)
	}
}

func (s *service) issueSession(ctx context.Context, user *models.User, loginRole string, roleNames []string, clientIP, userAgent string) (*LoginResult, error) {
	token, err := utils.GenerateSessionToken()
	if err != nil {
		log.Printf("session token generation failed: %v", err)
		return nil, errInternal
	}
	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		log.Printf("refresh token generation failed: %v", err)
		return nil, errInternal
	}

	device := utils.ParseUserAgent(userAgent)
	session := &models.Session{
		UserID:            user.ID,
		Token:             token,
		RefreshToken:      refreshToken,
		LoginRole:         loginRole,
		DeviceFingerprint: utils.GenerateDeviceFingerprint(clientIP, userAgent),
		DeviceType:        device.DeviceType,
		Browser:           device.Browser,
		OperatingSystem:   device.OperatingSystem,
		IPAddress:         clientIP,
		UserAgent:         userAgent,
		ExpiresAt:         time.Now().Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Create(session); err != nil {
		log.Printf("session create failed for user %d: %v", user.ID, err)
		return nil, errInternal
	}

	accessToken, err := utils.GenerateAccessToken(&models.UserClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      loginRole,
		SessionID: session.ID,
	}, s.cfg.SessionTTL)
	if err != nil {
		log.Printf("access token generation failed: %v", err)
		return nil, errInternal
	}

	// Housekeeping after the point of no return is best-effort.
	if err := s.users.ResetFailedLogins(user.ID); err != nil {
		log.Printf("failed-login reset failed for user %d: %v", user.ID, err)
	}
	if err := s.limiter.Reset(ctx, ratelimit.FailedLoginKey(user.Username)); err != nil {
		log.Printf("advisory counter reset failed for %q: %v", user.Username, err)
	}
	if err := s.users.LogLogin(&models.LoginAudit{
		UserID:    user.ID,
		Role:      loginRole,
		SessionID: session.ID,
		IPAddress: clientIP,
		UserAgent: userAgent,
	}); err != nil {
		log.Printf("login audit write failed for user %d: %v", user.ID, err)
	}

	profile, err := s.Profile(ctx, user.ID, loginRole)
	if err != nil {
		log.Printf("profile lookup failed for user %d: %v", user.ID, err)
		profile = nil
	}

	return &LoginResult{
		User:           user,
		Token:          accessToken,
		RefreshToken:   refreshToken,
		LoginRole:      loginRole,
		AvailableRoles: roleNames,
		Profile:        profile,
		Session:        session.Summary(),
	}, nil
}

func (s *service) VerifyEmail(ctx context.Context, userID uint, code string) (*VerifyResult, error) {
	if userID == 0 || strings.TrimSpace(code) == "" {
		return nil, newError(http.StatusBadRequest, "User id and verification code are required")
	}

	if !s.allow(ctx, ratelimit.VerifyKey(userID), s.cfg.VerifyMaxAttempts, s.cfg.VerifyWindow) {
		return nil, errRateLimited
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, newError(http.StatusNotFound, "User not found")
		}
		log.Printf("user lookup failed for id %d: %v", userID, err)
		return nil, errInternal
	}

	// Verifying an already-verified account is a no-op success.
	if user.IsVerified {
		return &VerifyResult{Verified: true, AlreadyVerified: true, User: user}, nil
	}

	matched, err := s.users.VerifyEmail(userID, strings.TrimSpace(code))
	if err != nil {
		log.Printf("verification failed for user %d: %v", userID, err)
		return nil, errInternal
	}
	if !matched {
		return nil, newError(http.StatusBadRequest, "Invalid or expired verification code")
	}

	user.IsVerified = true
	return &VerifyResult{Verified: true, User: user}, nil
}

func (s *service) ApplySeller(ctx context.Context, userID uint, businessName, businessType string) (*models.SellerApplication, error) {
	businessName = validation.Sanitize(businessName)

	v := validation.New()
	v.Required("business_name", businessName)
	v.Required("business_type", businessType)
	if !v.Valid() {
		return nil, newErrorWithData(http.StatusBadRequest, "Validation failed",
			map[string]interface{}{"errors": v.Errors})
	}
	if !models.ValidBusinessType(businessType) {
		return nil, newErrorWithData(http.StatusBadRequest, "Invalid business type",
			map[string]interface{}{"allowed_types": models.BusinessTypes})
	}

	if _, err := s.users.GetByID(userID); err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, newError(http.StatusNotFound, "User not found")
		}
		log.Printf("user lookup failed for id %d: %v", userID, err)
		return nil, errInternal
	}

	app, err := s.users.ApplyForSellerRole(userID, businessName, businessType)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationPending) || errors.Is(err, repositories.ErrAlreadySeller) {
			// One generic rejection; the caller learns no more than
			// "cannot be processed".
			return nil, newError(http.StatusBadRequest, "Seller application cannot be processed")
		}
		log.Printf("seller application failed for user %d: %v", userID, err)
		return nil, errInternal
	}
	return app, nil
}

// RefreshToken exchanges a refresh token for a new signed access token
// bound to the same session.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", newError(http.StatusBadRequest, "Refresh token is required")
	}

	session, err := s.sessions.GetByRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			return "", newError(http.StatusUnauthorized, "Invalid refresh token")
		}
		log.Printf("session lookup failed: %v", err)
		return "", errInternal
	}
	if session.Expired() {
		return "", newError(http.StatusUnauthorized, "Session expired")
	}

	user, err := s.users.GetByID(session.UserID)
	if err != nil {
		return "", newError(http.StatusUnauthorized, "Invalid refresh token")
	}

	token, err := utils.GenerateAccessToken(&models.UserClaims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      session.LoginRole,
		SessionID: session.ID,
	}, time.Until(session.ExpiresAt))
	if err != nil {
		log.Printf("access token generation failed: %v", err)
		return "", errInternal
	}
	return token, nil
}

func (s *service) Logout(ctx context.Context, sessionID uint) error {
	err := s.sessions.Delete(sessionID)
	if err != nil && !errors.Is(err, repositories.ErrSessionNotFound) {
		log.Printf("session delete failed for %d: %v", sessionID, err)
		return errInternal
	}
	return nil
}

func (s *service) Profile(ctx context.Context, userID uint, role string) (interface{}, error) {
	if role == models.RoleSeller {
		return s.users.GetSellerProfile(userID)
	}
	return s.users.GetBuyerProfile(userID)
}

func (s *service) Sessions(ctx context.Context, userID uint) ([]models.Session, error) {
	return s.sessions.ListByUser(userID)
}
