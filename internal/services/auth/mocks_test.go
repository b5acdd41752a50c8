package auth

import (
	"context"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*models.User, error) {
	args := m.Called(id)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) UsernameExists(username string) (bool, error) {
	args := m.Called(username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) EmailExists(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) Update(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) SetVerificationCode(userID uint, code string, expiresAt time.Time) error {
	args := m.Called(userID, code, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepo) VerifyEmail(userID uint, code string) (bool, error) {
	args := m.Called(userID, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) RecordFailedLogin(userID uint) (int, error) {
	args := m.Called(userID)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepo) ResetFailedLogins(userID uint) error {
	args := m.Called(userID)
	return args.Error(0)
}

func (m *MockUserRepo) LockAccount(userID uint, until time.Time) error {
	args := m.Called(userID, until)
	return args.Error(0)
}

func (m *MockUserRepo) GetLoginRoles(userID uint) ([]models.RoleAssignment, error) {
	args := m.Called(userID)
	if r := args.Get(0); r != nil {
		return r.([]models.RoleAssignment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetBuyerProfile(userID uint) (*models.BuyerProfile, error) {
	args := m.Called(userID)
	if p := args.Get(0); p != nil {
		return p.(*models.BuyerProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) GetSellerProfile(userID uint) (*models.SellerProfile, error) {
	args := m.Called(userID)
	if p := args.Get(0); p != nil {
		return p.(*models.SellerProfile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) ApplyForSellerRole(userID uint, businessName, businessType string) (*models.SellerApplication, error) {
	args := m.Called(userID, businessName, businessType)
	if a := args.Get(0); a != nil {
		return a.(*models.SellerApplication), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepo) LogLogin(audit *models.LoginAudit) error {
	args := m.Called(audit)
	return args.Error(0)
}

func (m *MockUserRepo) List(offset, limit int) ([]models.User, int64, error) {
	args := m.Called(offset, limit)
	if u := args.Get(0); u != nil {
		return u.([]models.User), args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

type MockSessionRepo struct {
	mock.Mock
}

func (m *MockSessionRepo) Create(session *models.Session) error {
	args := m.Called(session)
	return args.Error(0)
}

func (m *MockSessionRepo) GetByID(id uint) (*models.Session, error) {
	args := m.Called(id)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepo) GetByRefreshToken(token string) (*models.Session, error) {
	args := m.Called(token)
	if s := args.Get(0); s != nil {
		return s.(*models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepo) ListByUser(userID uint) ([]models.Session, error) {
	args := m.Called(userID)
	if s := args.Get(0); s != nil {
		return s.([]models.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockSessionRepo) DeleteExpired() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allow(ctx context.Context, key string, maxAttempts int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, maxAttempts, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockLimiter) Reset(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}
