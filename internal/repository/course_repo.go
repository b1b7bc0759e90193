package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"launchpad/internal/domain"
)

// CourseRepository define las lecturas de catalogo: cursos, modulos y lecciones.
type CourseRepository interface {
	GetByIDOrSlug(ctx context.Context, idOrSlug string) (domain.Course, error)
	First(ctx context.Context) (domain.Course, error)
	CreateCourse(ctx context.Context, course domain.Course) error
	CreateModule(ctx context.Context, module domain.CourseModule) error
	CreateLesson(ctx context.Context, lesson domain.Lesson) error
	ModulesByCourse(ctx context.Context, courseID string) ([]domain.CourseModule, error)
	LessonsByModules(ctx context.Context, moduleIDs []string) ([]domain.Lesson, error)
	GetLesson(ctx context.Context, id string) (domain.Lesson, error)
}

// PgCourseRepository implementa CourseRepository usando pgxpool.
type PgCourseRepository struct {
	pool *pgxpool.Pool
}

func NewPgCourseRepository(pool *pgxpool.Pool) *PgCourseRepository {
	return &PgCourseRepository{pool: pool}
}

func (r *PgCourseRepository) GetByIDOrSlug(ctx context.Context, idOrSlug string) (domain.Course, error) {
	const query = `
		SELECT id, title, slug, created_at
		FROM courses
		WHERE id = $1 OR slug = $1
		LIMIT 1
	`
	return r.scanCourse(ctx, query, idOrSlug)
}

func (r *PgCourseRepository) First(ctx context.Context) (domain.Course, error) {
	const query = `
		SELECT id, title, slug, created_at
		FROM courses
		ORDER BY created_at
		LIMIT 1
	`
	var c domain.Course
	err := r.pool.QueryRow(ctx, query).Scan(&c.ID, &c.Title, &c.Slug, &c.CreatedAt)
	if err != nil {
		return domain.Course{}, err
	}
	return c, nil
}

func (r *PgCourseRepository) CreateCourse(ctx context.Context, course domain.Course) error {
	const query = `
		INSERT INTO courses (id, title, slug, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, course.ID, course.Title, course.Slug, course.CreatedAt)
	return err
}

func (r *PgCourseRepository) CreateModule(ctx context.Context, module domain.CourseModule) error {
	const query = `
		INSERT INTO course_modules (id, course_id, title, position, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query, module.ID, module.CourseID, module.Title, module.Position, module.CreatedAt)
	return err
}

func (r *PgCourseRepository) CreateLesson(ctx context.Context, lesson domain.Lesson) error {
	const query = `
		INSERT INTO lessons (id, module_id, title, slug, position, is_free_preview, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		lesson.ID,
		lesson.ModuleID,
		lesson.Title,
		lesson.Slug,
		lesson.Position,
		lesson.IsFreePreview,
		lesson.CreatedAt,
	)
	return err
}

func (r *PgCourseRepository) ModulesByCourse(ctx context.Context, courseID string) ([]domain.CourseModule, error) {
	const query = `
		SELECT id, course_id, title, position, created_at
		FROM course_modules
		WHERE course_id = $1
		ORDER BY position
	`
	rows, err := r.pool.Query(ctx, query, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []domain.CourseModule
	for rows.Next() {
		var m domain.CourseModule
		if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Position, &m.CreatedAt); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

func (r *PgCourseRepository) LessonsByModules(ctx context.Context, moduleIDs []string) ([]domain.Lesson, error) {
	if len(moduleIDs) == 0 {
		return nil, nil
	}
	const query = `
		SELECT id, module_id, title, slug, position, is_free_preview, created_at
		FROM lessons
		WHERE module_id = ANY($1)
		ORDER BY module_id, position
	`
	rows, err := r.pool.Query(ctx, query, moduleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lessons []domain.Lesson
	for rows.Next() {
		var l domain.Lesson
		if err := rows.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Slug, &l.Position, &l.IsFreePreview, &l.CreatedAt); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *PgCourseRepository) GetLesson(ctx context.Context, id string) (domain.Lesson, error) {
	const query = `
		SELECT id, module_id, title, slug, position, is_free_preview, created_at
		FROM lessons
		WHERE id = $1
	`
	var l domain.Lesson
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&l.ID,
		&l.ModuleID,
		&l.Title,
		&l.Slug,
		&l.Position,
		&l.IsFreePreview,
		&l.CreatedAt,
	)
	if err != nil {
		return domain.Lesson{}, err
	}
	return l, nil
}

func (r *PgCourseRepository) scanCourse(ctx context.Context, query string, arg any) (domain.Course, error) {
	var c domain.Course
	err := r.pool.QueryRow(ctx, query, arg).Scan(&c.ID, &c.Title, &c.Slug, &c.CreatedAt)
	if err != nil {
		return domain.Course{}, err
	}
	return c, nil
}
