package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"launchpad/internal/domain"
)

// EnrollmentRepository define la lectura del registro de acceso a un curso.
type EnrollmentRepository interface {
	Get(ctx context.Context, userID, courseID string) (domain.Enrollment, error)
}

// PgEnrollmentRepository implementa EnrollmentRepository usando pgxpool.
type PgEnrollmentRepository struct {
	pool *pgxpool.Pool
}

func NewPgEnrollmentRepository(pool *pgxpool.Pool) *PgEnrollmentRepository {
	return &PgEnrollmentRepository{pool: pool}
}

func (r *PgEnrollmentRepository) Get(ctx context.Context, userID, courseID string) (domain.Enrollment, error) {
	const query = `
		SELECT user_id, course_id, status, COALESCE(source, ''), expires_at, created_at
		FROM enrollments
		WHERE user_id = $1 AND course_id = $2
	`
	var e domain.Enrollment
	err := r.pool.QueryRow(ctx, query, userID, courseID).Scan(
		&e.UserID,
		&e.CourseID,
		&e.Status,
		&e.Source,
		&e.ExpiresAt,
		&e.CreatedAt,
	)
	if err != nil {
		return domain.Enrollment{}, err
	}
	return e, nil
}
