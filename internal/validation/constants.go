package validation

import "regexp"

const (
	// Username requirements
	MinUsernameLength = 3
	MaxUsernameLength = 50

	// Password requirements
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt input limit

	// String lengths
	MaxEmailLength = 254
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	tagRegex      = regexp.MustCompile(`<[^>]*>`)
)
