package validation

import (
	"github.com/kalu-Peter/BidKE-sub002/internal/models"
)

// UserRegistration validates a registration payload, collecting every
// field error rather than stopping at the first.
func (v *Validator) UserRegistration(in *models.RegisterInput) {
	v.Required("username", in.Username)
	v.Required("email", in.Email)
	v.Required("password", in.Password)

	if in.Username != "" {
		v.Username("username", in.Username)
	}
	if in.Email != "" {
		v.Email("email", in.Email)
	}
	if in.Password != "" {
		v.Password("password", in.Password)
	}
	if in.Phone != "" {
		v.Phone("phone", in.Phone)
	}
}

// UserLogin validates a login payload, reporting every missing field.
func (v *Validator) UserLogin(in *models.LoginInput) {
	v.Required("username", in.Username)
	v.Required("password", in.Password)
	v.Required("login_role", in.LoginRole)
}
