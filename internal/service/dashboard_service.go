package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"launchpad/internal/domain"
	"launchpad/internal/repository"
)

var ErrRateLimited = errors.New("rate limited")

// Identity es la identidad de sesion del request actual.
type Identity struct {
	ID            string
	Email         string
	Name          string
	EmailVerified bool
}

// Formas del payload JSON del dashboard.
type (
	DashboardUser struct {
		ID            string  `json:"id"`
		Name          *string `json:"name"`
		Email         *string `json:"email"`
		EmailVerified bool    `json:"emailVerified"`
	}

	DashboardCourse struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Slug  string `json:"slug"`
	}

	DashboardProgress struct {
		OverallPercent int              `json:"overallPercent"`
		LastActivityAt *time.Time       `json:"lastActivityAt,omitempty"`
		Modules        []ModuleProgress `json:"modules"`
	}

	UnlockCTA struct {
		PricingURL string `json:"pricingUrl"`
		Plan       string `json:"plan"`
	}

	DashboardCTAs struct {
		Unlock         UnlockCTA `json:"unlock"`
		FreePreviewURL string    `json:"freePreviewUrl,omitempty"`
	}

	DashboardMessages struct {
		VerifyEmailRequired bool `json:"verifyEmailRequired"`
	}

	DashboardPayload struct {
		User       DashboardUser      `json:"user"`
		Course     DashboardCourse    `json:"course"`
		Enrollment ResolvedEnrollment `json:"enrollment"`
		Progress   DashboardProgress  `json:"progress"`
		Resume     *ResumeRef         `json:"resume,omitempty"`
		CTAs       *DashboardCTAs     `json:"ctas,omitempty"`
		Messages   DashboardMessages  `json:"messages"`
	}
)

// DashboardService arma el payload del dashboard para un usuario autenticado.
type DashboardService struct {
	logger      *zap.Logger
	catalog     *CatalogService
	enrollments *EnrollmentService
	courses     repository.CourseRepository
	progress    repository.ProgressRepository
	limiter     RateLimiter
	pricingURL  string
	previewURL  string
}

func NewDashboardService(
	logger *zap.Logger,
	catalog *CatalogService,
	enrollments *EnrollmentService,
	courses repository.CourseRepository,
	progress repository.ProgressRepository,
	limiter RateLimiter,
	pricingURL, previewURL string,
) *DashboardService {
	if limiter == nil {
		limiter = NewSlidingWindowLimiter(DashboardRateWindow, DashboardRateLimit)
	}
	return &DashboardService{
		logger:      logger,
		catalog:     catalog,
		enrollments: enrollments,
		courses:     courses,
		progress:    progress,
		limiter:     limiter,
		pricingURL:  pricingURL,
		previewURL:  previewURL,
	}
}

// Build resuelve curso, enrollment y progreso y los compone en una respuesta.
func (s *DashboardService) Build(ctx context.Context, identity Identity, courseParam string) (DashboardPayload, error) {
	if !s.limiter.Allow(identity.ID) {
		return DashboardPayload{}, ErrRateLimited
	}

	course, err := s.catalog.ResolveCourse(ctx, courseParam)
	if err != nil {
		return DashboardPayload{}, err
	}

	// Fan-out: enrollment y modulos son consultas independientes; ambas deben
	// terminar antes de agregar.
	var (
		wg         sync.WaitGroup
		enrollment ResolvedEnrollment
		modules    []domain.CourseModule
		enrollErr  error
		modErr     error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		enrollment, enrollErr = s.enrollments.Resolve(ctx, identity.ID, course.ID)
	}()
	go func() {
		defer wg.Done()
		modules, modErr = s.courses.ModulesByCourse(ctx, course.ID)
	}()
	wg.Wait()
	if enrollErr != nil {
		return DashboardPayload{}, enrollErr
	}
	if modErr != nil {
		return DashboardPayload{}, modErr
	}

	moduleIDs := make([]string, len(modules))
	for i, m := range modules {
		moduleIDs[i] = m.ID
	}
	lessons, err := s.courses.LessonsByModules(ctx, moduleIDs)
	if err != nil {
		return DashboardPayload{}, err
	}

	lessonIDs := make([]string, len(lessons))
	for i, l := range lessons {
		lessonIDs[i] = l.ID
	}
	progressRows, err := s.progress.ByUserAndLessons(ctx, identity.ID, lessonIDs)
	if err != nil {
		return DashboardPayload{}, err
	}

	aggregated := AggregateProgress(modules, lessons, progressRows, enrollment.IsEnrolled())

	payload := DashboardPayload{
		User: DashboardUser{
			ID:            identity.ID,
			Name:          optionalString(identity.Name),
			Email:         optionalString(identity.Email),
			EmailVerified: identity.EmailVerified,
		},
		Course: DashboardCourse{
			ID:    course.ID,
			Title: course.Title,
			Slug:  course.Slug,
		},
		Enrollment: enrollment,
		Progress: DashboardProgress{
			OverallPercent: aggregated.OverallPercent,
			LastActivityAt: aggregated.LastActivityAt,
			Modules:        aggregated.Modules,
		},
		Resume: aggregated.Resume,
		Messages: DashboardMessages{
			VerifyEmailRequired: !identity.EmailVerified,
		},
	}

	if !enrollment.IsEnrolled() {
		payload.CTAs = &DashboardCTAs{
			Unlock: UnlockCTA{
				PricingURL: s.pricingURL,
				Plan:       "Full course access",
			},
			FreePreviewURL: s.previewURL,
		}
	}

	return payload, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
