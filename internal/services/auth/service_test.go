package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() Config {
	return Config{
		LoginMaxAttempts:       10,
		LoginWindow:            300 * time.Second,
		FailedLoginMaxAttempts: 5,
		FailedLoginWindow:      900 * time.Second,
		SignupMaxAttempts:      3,
		SignupWindow:           300 * time.Second,
		VerifyMaxAttempts:      5,
		VerifyWindow:           300 * time.Second,
		MaxFailedLogins:        5,
		LockoutDuration:        30 * time.Minute,
		SessionTTL:             30 * 24 * time.Hour,
		VerificationCodeTTL:    time.Hour,
		ReturnVerificationCode: true,
	}
}

func newTestService() (Service, *MockUserRepo, *MockSessionRepo, *MockLimiter) {
	users := new(MockUserRepo)
	sessions := new(MockSessionRepo)
	limiter := new(MockLimiter)
	svc := NewService(users, sessions, limiter, testConfig())
	return svc, users, sessions, limiter
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func activeUser(t *testing.T, password string) *models.User {
	user := &models.User{
		Username:     "pkalu",
		Email:        "pkalu@bidke.co.ke",
		PasswordHash: hashOf(t, password),
		IsVerified:   true,
		Status:       models.StatusActive,
	}
	user.ID = 1
	return user
}

func buyerRoles() []models.RoleAssignment {
	return []models.RoleAssignment{
		{UserID: 1, Role: models.RoleBuyer, IsPrimary: true, Status: models.RoleStatusActive, CanLogin: true},
	}
}

func authErr(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	authErr, ok := err.(*Error)
	require.True(t, ok, "expected *auth.Error, got %T: %v", err, err)
	return authErr
}

func TestRegisterCreatesBuyerAccount(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()

	limiter.On("Allow", ctx, "signup_10.0.0.1", 3, 300*time.Second).Return(true, nil)
	users.On("UsernameExists", "pkalu").Return(false, nil)
	users.On("EmailExists", "pkalu@bidke.co.ke").Return(false, nil)
	users.On("Create", mock.AnythingOfType("*models.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*models.User).ID = 1
	}).Return(nil)
	users.On("SetVerificationCode", uint(1), mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil)
	users.On("GetLoginRoles", uint(1)).Return(buyerRoles(), nil)

	result, err := svc.Register(ctx, &models.RegisterInput{
		Username: "PKalu",
		Email:    "PKalu@bidke.co.ke",
		Password: "abcdefg1",
	}, "10.0.0.1")
	require.NoError(t, err)

	assert.Equal(t, "pkalu", result.User.Username, "username must be normalized to lower case")
	assert.False(t, result.User.IsVerified)
	assert.True(t, result.VerificationRequired)
	assert.Regexp(t, `^[0-9]{6}$`, result.VerificationCode)
	require.Len(t, result.Roles, 1)
	assert.Equal(t, models.RoleBuyer, result.Roles[0].Role)
	assert.True(t, result.Roles[0].CanLogin)

	users.AssertExpectations(t)
}

func TestRegisterCollectsAllFieldErrors(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Register(context.Background(), &models.RegisterInput{
		Username: "x",
		Email:    "not-an-email",
		Password: "abcdefg",
	}, "10.0.0.1")

	e := authErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	fieldErrors := e.Data["errors"].(map[string]string)
	assert.Contains(t, fieldErrors, "username")
	assert.Contains(t, fieldErrors, "email")
	assert.Contains(t, fieldErrors, "password")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()

	limiter.On("Allow", ctx, "signup_10.0.0.1", 3, 300*time.Second).Return(true, nil)
	users.On("UsernameExists", "pkalu").Return(true, nil)

	_, err := svc.Register(ctx, &models.RegisterInput{
		Username: "pkalu",
		Email:    "new@bidke.co.ke",
		Password: "abcdefg1",
	}, "10.0.0.1")

	e := authErr(t, err)
	assert.Equal(t, http.StatusConflict, e.Status)
	assert.Equal(t, "username", e.Data["field"])
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()

	limiter.On("Allow", ctx, "signup_10.0.0.1", 3, 300*time.Second).Return(true, nil)
	users.On("UsernameExists", "newuser").Return(false, nil)
	users.On("EmailExists", "pkalu@bidke.co.ke").Return(true, nil)

	_, err := svc.Register(ctx, &models.RegisterInput{
		Username: "newuser",
		Email:    "pkalu@bidke.co.ke",
		Password: "abcdefg1",
	}, "10.0.0.1")

	e := authErr(t, err)
	assert.Equal(t, http.StatusConflict, e.Status)
	assert.Equal(t, "email", e.Data["field"])
}

func TestRegisterLosingRaceStillConflicts(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()

	limiter.On("Allow", ctx, "signup_10.0.0.1", 3, 300*time.Second).Return(true, nil)
	users.On("UsernameExists", "pkalu").Return(false, nil)
	users.On("EmailExists", "pkalu@bidke.co.ke").Return(false, nil)
	users.On("Create", mock.Anything).Return(repositories.ErrUsernameTaken)

	_, err := svc.Register(ctx, &models.RegisterInput{
		Username: "pkalu",
		Email:    "pkalu@bidke.co.ke",
		Password: "abcdefg1",
	}, "10.0.0.1")

	e := authErr(t, err)
	assert.Equal(t, http.StatusConflict, e.Status)
	assert.Equal(t, "username", e.Data["field"])
}

func TestRegisterRateLimited(t *testing.T) {
	svc, _, _, limiter := newTestService()
	ctx := context.Background()

	limiter.On("Allow", ctx, "signup_10.0.0.1", 3, 300*time.Second).Return(false, nil)

	_, err := svc.Register(ctx, &models.RegisterInput{
		Username: "pkalu",
		Email:    "pkalu@bidke.co.ke",
		Password: "abcdefg1",
	}, "10.0.0.1")

	e := authErr(t, err)
	assert.Equal(t, http.StatusTooManyRequests, e.Status)
}

func TestLoginSuccessIssuesSession(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc, users, sessions, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "pkalu").Return(user, nil)
	users.On("GetLoginRoles", uint(1)).Return(buyerRoles(), nil)

	var created *models.Session
	sessions.On("Create", mock.AnythingOfType("*models.Session")).Run(func(args mock.Arguments) {
		created = args.Get(0).(*models.Session)
		created.ID = 7
	}).Return(nil)

	users.On("ResetFailedLogins", uint(1)).Return(nil)
	limiter.On("Reset", ctx, []string{"failed_login_pkalu"}).Return(nil)
	users.On("LogLogin", mock.AnythingOfType("*models.LoginAudit")).Return(nil)
	users.On("GetBuyerProfile", uint(1)).Return(&models.BuyerProfile{UserID: 1, Username: "pkalu"}, nil)

	result, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "abcdefg1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "Mozilla/5.0 (Windows NT 10.0) Chrome/120.0")
	require.NoError(t, err)

	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, models.RoleBuyer, result.LoginRole)
	assert.Equal(t, []string{"buyer"}, result.AvailableRoles)

	require.NotNil(t, created)
	assert.Equal(t, uint(1), created.UserID)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), created.ExpiresAt, time.Minute)
	assert.Equal(t, "desktop", created.DeviceType)
	assert.Equal(t, "chrome", created.Browser)
	assert.NotEmpty(t, created.DeviceFingerprint)

	users.AssertExpectations(t)
	sessions.AssertExpectations(t)
}

func TestLoginMissingFields(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Login(context.Background(), &models.LoginInput{}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	fieldErrors := e.Data["errors"].(map[string]string)
	assert.Contains(t, fieldErrors, "username")
	assert.Contains(t, fieldErrors, "password")
	assert.Contains(t, fieldErrors, "login_role")
}

func TestLoginInvalidRole(t *testing.T) {
	svc, _, _, _ := newTestService()

	_, err := svc.Login(context.Background(), &models.LoginInput{
		Username:  "pkalu",
		Password:  "abcdefg1",
		LoginRole: "superuser",
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
}

func TestLoginRateLimitedByIP(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(false, nil)

	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "abcdefg1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusTooManyRequests, e.Status)
	users.AssertNotCalled(t, "GetByUsername", mock.Anything)
}

func TestLoginUnknownUserIsGeneric(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "ghost").Return(nil, repositories.ErrUserNotFound)
	// Advisory counter is bumped but never blocks the response.
	limiter.On("Allow", ctx, "failed_login_ghost", 5, 900*time.Second).Return(true, nil)

	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "ghost",
		Password:  "abcdefg1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusUnauthorized, e.Status)
	assert.Equal(t, "Invalid credentials", e.Message)
	limiter.AssertExpectations(t)
}

func TestLoginLockedAccount(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()

	user := activeUser(t, "abcdefg1")
	until := time.Now().Add(10 * time.Minute)
	user.LockedUntil = &until

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "pkalu").Return(user, nil)

	// Even the correct password is rejected while locked.
	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "abcdefg1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusLocked, e.Status)
	users.AssertNotCalled(t, "RecordFailedLogin", mock.Anything)
}

func TestLoginWrongPasswordLocksAtThreshold(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "pkalu").Return(user, nil)
	users.On("RecordFailedLogin", uint(1)).Return(5, nil)
	users.On("LockAccount", uint(1), mock.MatchedBy(func(until time.Time) bool {
		expected := time.Now().Add(30 * time.Minute)
		return until.After(expected.Add(-time.Minute)) && until.Before(expected.Add(time.Minute))
	})).Return(nil)

	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "wrongpass1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusUnauthorized, e.Status)
	assert.Equal(t, "Invalid credentials", e.Message)
	users.AssertExpectations(t)
}

func TestLoginWrongPasswordBelowThreshold(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "pkalu").Return(user, nil)
	users.On("RecordFailedLogin", uint(1)).Return(2, nil)

	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "wrongpass1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusUnauthorized, e.Status)
	users.AssertNotCalled(t, "LockAccount", mock.Anything, mock.Anything)
}

func TestLoginUnverifiedEmail(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")
	user.IsVerified = false

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "pkalu").Return(user, nil)

	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "abcdefg1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusForbidden, e.Status)
	assert.Equal(t, true, e.Data["verification_required"])
}

func TestLoginInactiveStatus(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")
	user.Status = models.StatusSuspended

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "pkalu").Return(user, nil)

	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "abcdefg1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusForbidden, e.Status)
	assert.Equal(t, models.StatusSuspended, e.Data["status"])
}

func TestLoginRoleMismatchListsAvailableRoles(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "pkalu").Return(user, nil)
	users.On("GetLoginRoles", uint(1)).Return(buyerRoles(), nil)

	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "abcdefg1",
		LoginRole: models.RoleSeller,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusForbidden, e.Status)
	assert.Equal(t, []string{"buyer"}, e.Data["available_roles"])
}

func TestLoginNoEligibleRoles(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	limiter.On("Allow", ctx, "login_10.0.0.1", 10, 300*time.Second).Return(true, nil)
	users.On("GetByUsername", "pkalu").Return(user, nil)
	users.On("GetLoginRoles", uint(1)).Return([]models.RoleAssignment{}, nil)

	_, err := svc.Login(ctx, &models.LoginInput{
		Username:  "pkalu",
		Password:  "abcdefg1",
		LoginRole: models.RoleBuyer,
	}, "10.0.0.1", "")

	e := authErr(t, err)
	assert.Equal(t, http.StatusForbidden, e.Status)
}

func TestVerifyEmailSuccess(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")
	user.IsVerified = false

	limiter.On("Allow", ctx, "verify_1", 5, 300*time.Second).Return(true, nil)
	users.On("GetByID", uint(1)).Return(user, nil)
	users.On("VerifyEmail", uint(1), "123456").Return(true, nil)

	result, err := svc.VerifyEmail(ctx, 1, "123456")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.False(t, result.AlreadyVerified)
}

func TestVerifyEmailAlreadyVerifiedShortCircuits(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	limiter.On("Allow", ctx, "verify_1", 5, 300*time.Second).Return(true, nil)
	users.On("GetByID", uint(1)).Return(user, nil)

	result, err := svc.VerifyEmail(ctx, 1, "000000")
	require.NoError(t, err)
	assert.True(t, result.Verified)
	assert.True(t, result.AlreadyVerified)
	users.AssertNotCalled(t, "VerifyEmail", mock.Anything, mock.Anything)
}

func TestVerifyEmailWrongCode(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")
	user.IsVerified = false

	limiter.On("Allow", ctx, "verify_1", 5, 300*time.Second).Return(true, nil)
	users.On("GetByID", uint(1)).Return(user, nil)
	users.On("VerifyEmail", uint(1), "999999").Return(false, nil)

	_, err := svc.VerifyEmail(ctx, 1, "999999")

	e := authErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Invalid or expired verification code", e.Message)
}

func TestVerifyEmailUnknownUser(t *testing.T) {
	svc, users, _, limiter := newTestService()
	ctx := context.Background()

	limiter.On("Allow", ctx, "verify_9", 5, 300*time.Second).Return(true, nil)
	users.On("GetByID", uint(9)).Return(nil, repositories.ErrUserNotFound)

	_, err := svc.VerifyEmail(ctx, 9, "123456")

	e := authErr(t, err)
	assert.Equal(t, http.StatusNotFound, e.Status)
}

func TestApplySellerSuccess(t *testing.T) {
	svc, users, _, _ := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	users.On("GetByID", uint(1)).Return(user, nil)
	users.On("ApplyForSellerRole", uint(1), "Nairobi Traders", "electronics").
		Return(&models.SellerApplication{
			UserID:       1,
			BusinessName: "Nairobi Traders",
			BusinessType: "electronics",
			Status:       models.ApplicationPending,
		}, nil)

	app, err := svc.ApplySeller(ctx, 1, "Nairobi Traders", "electronics")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationPending, app.Status)
}

func TestApplySellerInvalidBusinessType(t *testing.T) {
	svc, users, _, _ := newTestService()

	_, err := svc.ApplySeller(context.Background(), 1, "Nairobi Traders", "smuggling")

	e := authErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	users.AssertNotCalled(t, "ApplyForSellerRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplySellerDuplicatePending(t *testing.T) {
	svc, users, _, _ := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	users.On("GetByID", uint(1)).Return(user, nil)
	users.On("ApplyForSellerRole", uint(1), "Nairobi Traders", "electronics").
		Return(nil, repositories.ErrApplicationPending)

	_, err := svc.ApplySeller(ctx, 1, "Nairobi Traders", "electronics")

	e := authErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Seller application cannot be processed", e.Message)
}

func TestApplySellerAlreadySeller(t *testing.T) {
	svc, users, _, _ := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	users.On("GetByID", uint(1)).Return(user, nil)
	users.On("ApplyForSellerRole", uint(1), "Nairobi Traders", "electronics").
		Return(nil, repositories.ErrAlreadySeller)

	_, err := svc.ApplySeller(ctx, 1, "Nairobi Traders", "electronics")

	e := authErr(t, err)
	assert.Equal(t, http.StatusBadRequest, e.Status)
	assert.Equal(t, "Seller application cannot be processed", e.Message)
}

func TestRefreshTokenIssuesNewAccessToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	svc, users, sessions, _ := newTestService()
	ctx := context.Background()
	user := activeUser(t, "abcdefg1")

	session := &models.Session{
		UserID:    1,
		LoginRole: models.RoleBuyer,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	session.ID = 7

	sessions.On("GetByRefreshToken", "rt_abc").Return(session, nil)
	users.On("GetByID", uint(1)).Return(user, nil)

	token, err := svc.RefreshToken(ctx, "rt_abc")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestRefreshTokenExpiredSession(t *testing.T) {
	svc, _, sessions, _ := newTestService()
	ctx := context.Background()

	session := &models.Session{
		UserID:    1,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	sessions.On("GetByRefreshToken", "rt_old").Return(session, nil)

	_, err := svc.RefreshToken(ctx, "rt_old")

	e := authErr(t, err)
	assert.Equal(t, http.StatusUnauthorized, e.Status)
}

func TestLogoutIsIdempotent(t *testing.T) {
	svc, _, sessions, _ := newTestService()
	ctx := context.Background()

	sessions.On("Delete", uint(7)).Return(repositories.ErrSessionNotFound)

	assert.NoError(t, svc.Logout(ctx, 7))
}
