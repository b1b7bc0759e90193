package domain

import "time"

// Estados persistidos en la tabla enrollments.
const (
	EnrollmentActive   = "active"
	EnrollmentTrialing = "trialing"
	EnrollmentCanceled = "canceled"
	EnrollmentExpired  = "expired"
	EnrollmentGifted   = "gifted"
)

// Enrollment es el registro de acceso explicito de un usuario a un curso.
// A lo sumo una fila por (user, course).
type Enrollment struct {
	UserID    string     `json:"user_id"`
	CourseID  string     `json:"course_id"`
	Status    string     `json:"status"`
	Source    string     `json:"source,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
