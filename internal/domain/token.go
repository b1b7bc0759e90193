package domain

import "time"

const (
	TokenPurposeEmailVerification = "email_verification"
	TokenPurposePasswordReset     = "password_reset"
)

const (
	TokenStatusValid    = "valid"
	TokenStatusConsumed = "consumed"
	TokenStatusExpired  = "expired"
)

// AuthToken guarda el hash de un secreto de un solo uso (verificacion o reset).
// El secreto crudo nunca se persiste.
type AuthToken struct {
	ID         string     `json:"id"`
	Purpose    string     `json:"purpose"`
	Identifier string     `json:"identifier"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	UsedAt     *time.Time `json:"used_at,omitempty"`
	UserID     string     `json:"user_id"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Status deriva el estado del token en el instante dado; nunca se almacena.
func (t AuthToken) Status(now time.Time) string {
	if t.UsedAt != nil {
		return TokenStatusConsumed
	}
	if now.After(t.ExpiresAt) {
		return TokenStatusExpired
	}
	return TokenStatusValid
}
