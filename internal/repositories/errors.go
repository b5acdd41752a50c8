package repositories

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrEmailTaken         = errors.New("email already taken")
	ErrSessionNotFound    = errors.New("session not found")
	ErrDuplicateSession   = errors.New("session token already exists")
	ErrApplicationPending = errors.New("seller application already pending")
	ErrAlreadySeller      = errors.New("seller role already granted")
	ErrDatabaseOperation  = errors.New("database operation failed")
)
