package domain

import "time"

const MembershipPro = "pro"

type User struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name,omitempty"`
	PasswordHash    string     `json:"-"`
	Membership      string     `json:"membership,omitempty"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// EmailVerified indica si el usuario ya confirmo su correo.
func (u User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}
