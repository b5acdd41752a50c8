package repositories

import (
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	// Create inserts a new user and their default buyer role in one transaction
	Create(user *models.User) error

	// GetByID retrieves a user by their ID
	GetByID(id uint) (*models.User, error)

	// GetByUsername retrieves a user by their username
	GetByUsername(username string) (*models.User, error)

	// UsernameExists reports whether a username is already taken
	UsernameExists(username string) (bool, error)

	// EmailExists reports whether an email is already registered
	EmailExists(email string) (bool, error)

	// Update persists changes to an existing user
	Update(user *models.User) error

	// SetVerificationCode stores a fresh verification code with its expiry
	SetVerificationCode(userID uint, code string, expiresAt time.Time) error

	// VerifyEmail matches the stored code and flips the verified flag.
	// Returns false if the code is wrong or expired.
	VerifyEmail(userID uint, code string) (bool, error)

	// RecordFailedLogin atomically increments the failed-login counter
	// and returns the new count
	RecordFailedLogin(userID uint) (int, error)

	// ResetFailedLogins clears the failed-login counter
	ResetFailedLogins(userID uint) error

	// LockAccount locks the account until the given time
	LockAccount(userID uint, until time.Time) error

	// GetLoginRoles returns the user's active, login-eligible role assignments
	GetLoginRoles(userID uint) ([]models.RoleAssignment, error)

	// GetBuyerProfile returns the buyer-facing profile
	GetBuyerProfile(userID uint) (*models.BuyerProfile, error)

	// GetSellerProfile joins the user with their approved seller application
	GetSellerProfile(userID uint) (*models.SellerProfile, error)

	// ApplyForSellerRole files a pending seller application and role.
	// Fails with ErrApplicationPending or ErrAlreadySeller.
	ApplyForSellerRole(userID uint, businessName, businessType string) (*models.SellerApplication, error)

	// LogLogin writes a login audit record
	LogLogin(audit *models.LoginAudit) error

	// List retrieves users with pagination
	List(offset, limit int) ([]models.User, int64, error)
}
