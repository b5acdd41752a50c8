package repositories

import (
	"errors"
	"strings"
	"time"

	"github.com/kalu-Peter/BidKE-sub002/internal/models"

	"gorm.io/gorm"
)

// SessionRepository defines the interface for session persistence.
type SessionRepository interface {
	// Create persists a session row; the store assigns the id.
	// Returns ErrDuplicateSession on a token constraint violation.
	Create(session *models.Session) error

	// GetByID retrieves a session by its id
	GetByID(id uint) (*models.Session, error)

	// GetByRefreshToken retrieves a session by its refresh token
	GetByRefreshToken(token string) (*models.Session, error)

	// ListByUser returns the user's unexpired sessions
	ListByUser(userID uint) ([]models.Session, error)

	// Delete removes a session (logout)
	Delete(id uint) error

	// DeleteExpired removes sessions past their expiry, returning the count
	DeleteExpired() (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a GORM-backed session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(session *models.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "duplicate key") {
			return ErrDuplicateSession
		}
		return err
	}
	return nil
}

func (r *sessionRepository) GetByID(id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) GetByRefreshToken(token string) (*models.Session, error) {
	var session models.Session
	if err := r.db.Where("refresh_token = ?", token).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepository) ListByUser(userID uint) ([]models.Session, error) {
	var sessions []models.Session
	err := r.db.Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) Delete(id uint) error {
	result := r.db.Delete(&models.Session{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *sessionRepository) DeleteExpired() (int64, error) {
	result := r.db.Where("expires_at <= ?", time.Now()).Delete(&models.Session{})
	return result.RowsAffected, result.Error
}
