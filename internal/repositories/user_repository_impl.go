package repositories

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"
	"github.com/kalu-Peter/BidKE-sub002/internal/repositories/cache"

	"gorm.io/gorm"
)

type userRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewUserRepository creates a GORM-backed user repository. The cache is
// optional; passing nil disables read-through caching.
func NewUserRepository(db *gorm.DB, cacheService *cache.CacheService) UserRepository {
	return &userRepository{db: db, cache: cacheService}
}

func (r *userRepository) Create(user *models.User) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		// Every account starts with a login-eligible buyer role.
		role := models.RoleAssignment{
			UserID:    user.ID,
			Role:      models.RoleBuyer,
			IsPrimary: true,
			Status:    models.RoleStatusActive,
			CanLogin:  true,
		}
		return tx.Create(&role).Error
	})
	if err != nil {
		return translateUserError(err, user)
	}
	return nil
}

// translateUserError maps storage-level uniqueness violations onto the
// same errors the optimistic existence checks produce, so a race still
// surfaces as "already exists".
func translateUserError(err error, user *models.User) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
		if strings.Contains(err.Error(), "email") {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	log.Printf("user create failed for %q: %v", user.Username, err)
	return ErrDatabaseOperation
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	if r.cache != nil {
		if cached, err := r.cache.GetUser(context.Background(), r.cache.UserKeyByID(id)); err == nil {
			return cached, nil
		}
	}

	var user models.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	r.cacheUser(&user)
	return &user, nil
}

func (r *userRepository) GetByUsername(username string) (*models.User, error) {
	if r.cache != nil {
		if cached, err := r.cache.GetUser(context.Background(), r.cache.UserKeyByUsername(username)); err == nil {
			return cached, nil
		}
	}

	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	r.cacheUser(&user)
	return &user, nil
}

// cacheUser populates the cache inline. The write has to complete
// before the read returns so a later invalidation cannot be overtaken
// by a stale snapshot.
func (r *userRepository) cacheUser(user *models.User) {
	if r.cache == nil {
		return
	}
	if err := r.cache.CacheUser(context.Background(), user); err != nil {
		log.Printf("failed to cache user %d: %v", user.ID, err)
	}
}

func (r *userRepository) invalidateCache(user *models.User) {
	if r.cache == nil {
		return
	}
	if err := r.cache.InvalidateUser(context.Background(), user.ID, user.Username); err != nil {
		log.Printf("failed to invalidate cache for user %d: %v", user.ID, err)
	}
}

func (r *userRepository) UsernameExists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) EmailExists(email string) (bool, error) {
	var count int64
	err := r.db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *userRepository) Update(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return err
	}
	r.invalidateCache(user)
	return nil
}

func (r *userRepository) SetVerificationCode(userID uint, code string, expiresAt time.Time) error {
	result := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"verification_code":            code,
		"verification_code_expires_at": expiresAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	r.invalidateByID(userID)
	return nil
}

func (r *userRepository) VerifyEmail(userID uint, code string) (bool, error) {
	matched := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		if user.VerificationCode == "" || user.VerificationCode != code {
			return nil
		}
		if user.VerificationCodeExpiresAt != nil && user.VerificationCodeExpiresAt.Before(time.Now()) {
			return nil
		}
		matched = true
		return tx.Model(&user).Updates(map[string]interface{}{
			"is_verified":       true,
			"verification_code": "",
		}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, err
	}
	if matched {
		r.invalidateByID(userID)
	}
	return matched, nil
}

// RecordFailedLogin increments the counter inside one transaction so
// concurrent failed attempts don't lose increments.
func (r *userRepository) RecordFailedLogin(userID uint) (int, error) {
	var attempts int
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + 1")).Error; err != nil {
			return err
		}
		var user models.User
		if err := tx.Select("failed_login_attempts").Where("id = ?", userID).First(&user).Error; err != nil {
			return err
		}
		attempts = user.FailedLoginAttempts
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.invalidateByID(userID)
	return attempts, nil
}

func (r *userRepository) ResetFailedLogins(userID uint) error {
	err := r.db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("failed_login_attempts", 0).Error
	if err != nil {
		return err
	}
	r.invalidateByID(userID)
	return nil
}

func (r *userRepository) LockAccount(userID uint, until time.Time) error {
	err := r.db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"locked_until":          until,
		"failed_login_attempts": 0,
	}).Error
	if err != nil {
		return err
	}
	r.invalidateByID(userID)
	return nil
}

func (r *userRepository) invalidateByID(userID uint) {
	if r.cache == nil {
		return
	}
	var user models.User
	if err := r.db.Select("id", "username").Where("id = ?", userID).First(&user).Error; err != nil {
		return
	}
	r.invalidateCache(&user)
}

func (r *userRepository) GetLoginRoles(userID uint) ([]models.RoleAssignment, error) {
	var roles []models.RoleAssignment
	err := r.db.Where("user_id = ? AND status = ? AND can_login = ?",
		userID, models.RoleStatusActive, true).Find(&roles).Error
	return roles, err
}

func (r *userRepository) GetBuyerProfile(userID uint) (*models.BuyerProfile, error) {
	user, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	return &models.BuyerProfile{
		UserID:      user.ID,
		Username:    user.Username,
		Email:       user.Email,
		Phone:       user.Phone,
		MemberSince: user.CreatedAt,
	}, nil
}

func (r *userRepository) GetSellerProfile(userID uint) (*models.SellerProfile, error) {
	user, err := r.GetByID(userID)
	if err != nil {
		return nil, err
	}
	var app models.SellerApplication
	err = r.db.Where("user_id = ? AND status = ?", userID, models.ApplicationApproved).
		Order("updated_at DESC").First(&app).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &models.SellerProfile{
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		BusinessName: app.BusinessName,
		BusinessType: app.BusinessType,
		ApprovedAt:   app.UpdatedAt,
	}, nil
}

func (r *userRepository) ApplyForSellerRole(userID uint, businessName, businessType string) (*models.SellerApplication, error) {
	var app *models.SellerApplication
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.SellerApplication{}).
			Where("user_id = ? AND status = ?", userID, models.ApplicationPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrApplicationPending
		}

		var active int64
		if err := tx.Model(&models.RoleAssignment{}).
			Where("user_id = ? AND role = ? AND status = ?",
				userID, models.RoleSeller, models.RoleStatusActive).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrAlreadySeller
		}

		app = &models.SellerApplication{
			UserID:       userID,
			BusinessName: businessName,
			BusinessType: businessType,
			Status:       models.ApplicationPending,
		}
		if err := tx.Create(app).Error; err != nil {
			return err
		}

		// The seller role exists immediately but stays pending (and not
		// login-eligible) until the application is approved. A prior
		// non-revoked assignment is reused so re-applying after a
		// rejection does not stack duplicate role rows.
		var existing models.RoleAssignment
		err := tx.Where("user_id = ? AND role = ? AND status <> ?",
			userID, models.RoleSeller, models.RoleStatusRevoked).First(&existing).Error
		if err == nil {
			return tx.Model(&existing).Update("status", models.RoleStatusPending).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		role := models.RoleAssignment{
			UserID:   userID,
			Role:     models.RoleSeller,
			Status:   models.RoleStatusPending,
			CanLogin: false,
		}
		return tx.Create(&role).Error
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *userRepository) LogLogin(audit *models.LoginAudit) error {
	return r.db.Create(audit).Error
}

func (r *userRepository) List(offset, limit int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	if err := r.db.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("Roles").Limit(limit).Offset(offset).
		Order("id").Find(&users).Error
	return users, total, err
}
