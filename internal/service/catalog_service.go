package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"launchpad/internal/domain"
	"launchpad/internal/repository"
)

var ErrCourseNotFound = errors.New("course not found")

// Curso por defecto que se siembra cuando el catalogo esta vacio.
const (
	defaultCourseTitle = "DevOps Launchpad"
	defaultCourseSlug  = "devops-launchpad"
)

// CatalogService resuelve cursos y siembra el curso por defecto.
type CatalogService struct {
	logger  *zap.Logger
	courses repository.CourseRepository
}

func NewCatalogService(logger *zap.Logger, courses repository.CourseRepository) *CatalogService {
	return &CatalogService{
		logger:  logger,
		courses: courses,
	}
}

// ResolveCourse busca por id o slug; con parametro vacio usa el curso por defecto.
func (s *CatalogService) ResolveCourse(ctx context.Context, idOrSlug string) (domain.Course, error) {
	if idOrSlug == "" {
		return s.EnsureDefaultCourse(ctx)
	}
	course, err := s.courses.GetByIDOrSlug(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Course{}, ErrCourseNotFound
		}
		return domain.Course{}, err
	}
	return course, nil
}

// EnsureDefaultCourse devuelve el primer curso; si no hay ninguno siembra el
// curso por defecto con un modulo y una leccion free-preview.
func (s *CatalogService) EnsureDefaultCourse(ctx context.Context) (domain.Course, error) {
	course, err := s.courses.First(ctx)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Course{}, err
	}

	now := time.Now().UTC()
	course = domain.Course{
		ID:        uuid.NewString(),
		Title:     defaultCourseTitle,
		Slug:      defaultCourseSlug,
		CreatedAt: now,
	}
	if err := s.courses.CreateCourse(ctx, course); err != nil {
		return domain.Course{}, err
	}

	module := domain.CourseModule{
		ID:        uuid.NewString(),
		CourseID:  course.ID,
		Title:     "Getting Started",
		Position:  0,
		CreatedAt: now,
	}
	if err := s.courses.CreateModule(ctx, module); err != nil {
		return domain.Course{}, err
	}

	lesson := domain.Lesson{
		ID:            uuid.NewString(),
		ModuleID:      module.ID,
		Title:         "Course introduction",
		Slug:          "course-introduction",
		Position:      0,
		IsFreePreview: true,
		CreatedAt:     now,
	}
	if err := s.courses.CreateLesson(ctx, lesson); err != nil {
		return domain.Course{}, err
	}

	if s.logger != nil {
		s.logger.Info("seeded default course", zap.String("course_id", course.ID), zap.String("slug", course.Slug))
	}
	return course, nil
}
