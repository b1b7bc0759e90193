package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"launchpad/internal/domain"
)

// ProgressRepository define lectura y upsert del progreso por leccion.
type ProgressRepository interface {
	ByUserAndLessons(ctx context.Context, userID string, lessonIDs []string) ([]domain.LessonProgress, error)
	RecordView(ctx context.Context, userID, lessonID string, viewedAt time.Time) error
	MarkCompleted(ctx context.Context, userID, lessonID string, completedAt time.Time) error
}

// PgProgressRepository implementa ProgressRepository usando pgxpool.
type PgProgressRepository struct {
	pool *pgxpool.Pool
}

func NewPgProgressRepository(pool *pgxpool.Pool) *PgProgressRepository {
	return &PgProgressRepository{pool: pool}
}

func (r *PgProgressRepository) ByUserAndLessons(ctx context.Context, userID string, lessonIDs []string) ([]domain.LessonProgress, error) {
	if len(lessonIDs) == 0 {
		return nil, nil
	}
	const query = `
		SELECT user_id, lesson_id, completed_at, last_viewed_at, created_at
		FROM user_lesson_progress
		WHERE user_id = $1 AND lesson_id = ANY($2)
	`
	rows, err := r.pool.Query(ctx, query, userID, lessonIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []domain.LessonProgress
	for rows.Next() {
		var p domain.LessonProgress
		if err := rows.Scan(&p.UserID, &p.LessonID, &p.CompletedAt, &p.LastViewedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

func (r *PgProgressRepository) RecordView(ctx context.Context, userID, lessonID string, viewedAt time.Time) error {
	const query = `
		INSERT INTO user_lesson_progress (user_id, lesson_id, last_viewed_at, created_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET last_viewed_at = EXCLUDED.last_viewed_at
	`
	_, err := r.pool.Exec(ctx, query, userID, lessonID, viewedAt)
	return err
}

func (r *PgProgressRepository) MarkCompleted(ctx context.Context, userID, lessonID string, completedAt time.Time) error {
	const query = `
		INSERT INTO user_lesson_progress (user_id, lesson_id, completed_at, last_viewed_at, created_at)
		VALUES ($1, $2, $3, $3, $3)
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET completed_at = EXCLUDED.completed_at, last_viewed_at = EXCLUDED.last_viewed_at
	`
	_, err := r.pool.Exec(ctx, query, userID, lessonID, completedAt)
	return err
}
