package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"launchpad/internal/domain"
	"launchpad/internal/repository"
)

// Estados resueltos que gatean la visibilidad de lecciones.
const (
	AccessEnrolled    = "enrolled"
	AccessTrial       = "trial"
	AccessExpired     = "expired"
	AccessNotEnrolled = "not_enrolled"
)

const sourceSubscription = "subscription"

// ResolvedEnrollment es el resultado total de la resolucion: exactamente uno
// de los cuatro estados, nunca ambiguo.
type ResolvedEnrollment struct {
	Status    string     `json:"status"`
	Source    string     `json:"source,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// IsEnrolled indica si el estado da acceso completo al catalogo.
func (r ResolvedEnrollment) IsEnrolled() bool {
	return r.Status == AccessEnrolled || r.Status == AccessTrial
}

// EnrollmentService resuelve el nivel de acceso de un usuario a un curso.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	users       repository.UserRepository
}

func NewEnrollmentService(enrollments repository.EnrollmentRepository, users repository.UserRepository) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		users:       users,
	}
}

// Resolve combina el registro explicito de enrollment con la membresia del
// usuario como senal de respaldo. La expiracion por fecha se evalua siempre
// al momento de la lectura, nunca contra un estado precalculado.
func (s *EnrollmentService) Resolve(ctx context.Context, userID, courseID string) (ResolvedEnrollment, error) {
	row, err := s.enrollments.Get(ctx, userID, courseID)
	if err == nil {
		return resolveRow(row, time.Now().UTC()), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return ResolvedEnrollment{}, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ResolvedEnrollment{Status: AccessNotEnrolled}, nil
		}
		return ResolvedEnrollment{}, err
	}
	if user.Membership == domain.MembershipPro {
		return ResolvedEnrollment{Status: AccessEnrolled, Source: sourceSubscription}, nil
	}
	return ResolvedEnrollment{Status: AccessNotEnrolled}, nil
}

// resolveRow aplica la politica de precedencia sobre una fila existente.
func resolveRow(row domain.Enrollment, now time.Time) ResolvedEnrollment {
	expiredByDate := row.ExpiresAt != nil && row.ExpiresAt.Before(now)

	switch row.Status {
	case domain.EnrollmentTrialing:
		if expiredByDate {
			return ResolvedEnrollment{Status: AccessExpired, Source: row.Source, ExpiresAt: row.ExpiresAt}
		}
		return ResolvedEnrollment{Status: AccessTrial, Source: row.Source, ExpiresAt: row.ExpiresAt}
	case domain.EnrollmentActive, domain.EnrollmentGifted:
		if expiredByDate {
			return ResolvedEnrollment{Status: AccessExpired, Source: row.Source, ExpiresAt: row.ExpiresAt}
		}
		return ResolvedEnrollment{Status: AccessEnrolled, Source: row.Source, ExpiresAt: row.ExpiresAt}
	default:
		// canceled, expired o cualquier estado no activo.
		return ResolvedEnrollment{Status: AccessExpired, Source: row.Source, ExpiresAt: row.ExpiresAt}
	}
}
