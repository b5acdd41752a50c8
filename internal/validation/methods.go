package validation

import (
	"fmt"
	"strings"
	"unicode"
)

// Validator defines validation methods
type Validator struct {
	Errors map[string]string
}

// New creates a new validator
func New() *Validator {
	return &Validator{Errors: make(map[string]string)}
}

// Valid checks if there are any validation errors
func (v *Validator) Valid() bool {
	return len(v.Errors) == 0
}

// AddError adds an error to the validator
func (v *Validator) AddError(field, message string) {
	if _, exists := v.Errors[field]; !exists {
		v.Errors[field] = message
	}
}

// Check adds an error if the condition is false
func (v *Validator) Check(ok bool, field, message string) {
	if !ok {
		v.AddError(field, message)
	}
}

// Required checks if a string is not empty after trimming
func (v *Validator) Required(field, value string) {
	v.Check(strings.TrimSpace(value) != "", field, "must not be empty")
}

// MinLength checks if a string has at least n characters
func (v *Validator) MinLength(field string, value string, n int) {
	v.Check(len(value) >= n, field, fmt.Sprintf("must be at least %d characters long", n))
}

// MaxLength checks if a string has at most n characters
func (v *Validator) MaxLength(field string, value string, n int) {
	v.Check(len(value) <= n, field, fmt.Sprintf("must not be more than %d characters long", n))
}

// Username validates username format: 3-50 characters, letters, digits
// and underscores only.
func (v *Validator) Username(field, username string) {
	v.MinLength(field, username, MinUsernameLength)
	v.MaxLength(field, username, MaxUsernameLength)
	v.Check(usernameRegex.MatchString(username), field,
		"may only contain letters, digits and underscores")
}

// Email validates email format
func (v *Validator) Email(field, email string) {
	v.MaxLength(field, email, MaxEmailLength)
	v.Check(emailRegex.MatchString(email), field, "must be a valid email address")
}

// Phone validates phone number format
func (v *Validator) Phone(field, phone string) {
	v.Check(phoneRegex.MatchString(phone), field, "must be a valid phone number")
}

// Password validates password strength: at least 8 characters with at
// least one letter and one digit.
func (v *Validator) Password(field, password string) {
	v.MinLength(field, password, MinPasswordLength)
	v.MaxLength(field, password, MaxPasswordLength)

	var hasLetter, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	v.Check(hasLetter, field, "must contain at least one letter")
	v.Check(hasDigit, field, "must contain at least one digit")
}

// Sanitize trims surrounding whitespace, strips markup tags and removes
// control characters. Valid plain-text input passes through unchanged.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = tagRegex.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
