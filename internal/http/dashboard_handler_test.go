package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"launchpad/internal/domain"
	"launchpad/internal/service"
)

type mockCourseRepo struct {
	courses []domain.Course
	modules []domain.CourseModule
	lessons []domain.Lesson
}

func (m *mockCourseRepo) GetByIDOrSlug(_ context.Context, idOrSlug string) (domain.Course, error) {
	for _, c := range m.courses {
		if c.ID == idOrSlug || c.Slug == idOrSlug {
			return c, nil
		}
	}
	return domain.Course{}, pgx.ErrNoRows
}

func (m *mockCourseRepo) First(_ context.Context) (domain.Course, error) {
	if len(m.courses) == 0 {
		return domain.Course{}, pgx.ErrNoRows
	}
	return m.courses[0], nil
}

func (m *mockCourseRepo) CreateCourse(_ context.Context, course domain.Course) error {
	m.courses = append(m.courses, course)
	return nil
}

func (m *mockCourseRepo) CreateModule(_ context.Context, module domain.CourseModule) error {
	m.modules = append(m.modules, module)
	return nil
}

func (m *mockCourseRepo) CreateLesson(_ context.Context, lesson domain.Lesson) error {
	m.lessons = append(m.lessons, lesson)
	return nil
}

func (m *mockCourseRepo) ModulesByCourse(_ context.Context, courseID string) ([]domain.CourseModule, error) {
	var out []domain.CourseModule
	for _, mod := range m.modules {
		if mod.CourseID == courseID {
			out = append(out, mod)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) LessonsByModules(_ context.Context, moduleIDs []string) ([]domain.Lesson, error) {
	wanted := make(map[string]bool, len(moduleIDs))
	for _, id := range moduleIDs {
		wanted[id] = true
	}
	var out []domain.Lesson
	for _, l := range m.lessons {
		if wanted[l.ModuleID] {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *mockCourseRepo) GetLesson(_ context.Context, id string) (domain.Lesson, error) {
	for _, l := range m.lessons {
		if l.ID == id {
			return l, nil
		}
	}
	return domain.Lesson{}, pgx.ErrNoRows
}

type mockProgressRepo struct {
	rows []domain.LessonProgress
}

func (m *mockProgressRepo) ByUserAndLessons(_ context.Context, userID string, lessonIDs []string) ([]domain.LessonProgress, error) {
	wanted := make(map[string]bool, len(lessonIDs))
	for _, id := range lessonIDs {
		wanted[id] = true
	}
	var out []domain.LessonProgress
	for _, row := range m.rows {
		if row.UserID == userID && wanted[row.LessonID] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *mockProgressRepo) RecordView(_ context.Context, userID, lessonID string, viewedAt time.Time) error {
	m.rows = append(m.rows, domain.LessonProgress{UserID: userID, LessonID: lessonID, LastViewedAt: viewedAt})
	return nil
}

func (m *mockProgressRepo) MarkCompleted(_ context.Context, userID, lessonID string, completedAt time.Time) error {
	m.rows = append(m.rows, domain.LessonProgress{UserID: userID, LessonID: lessonID, CompletedAt: &completedAt, LastViewedAt: completedAt})
	return nil
}

type mockEnrollmentRepo struct {
	rows map[string]domain.Enrollment
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{rows: make(map[string]domain.Enrollment)}
}

func (m *mockEnrollmentRepo) put(row domain.Enrollment) {
	m.rows[row.UserID+"/"+row.CourseID] = row
}

func (m *mockEnrollmentRepo) Get(_ context.Context, userID, courseID string) (domain.Enrollment, error) {
	row, ok := m.rows[userID+"/"+courseID]
	if !ok {
		return domain.Enrollment{}, pgx.ErrNoRows
	}
	return row, nil
}

type dashboardFixture struct {
	router      *gin.Engine
	jwtSvc      *service.JWTService
	courses     *mockCourseRepo
	progress    *mockProgressRepo
	enrollments *mockEnrollmentRepo
}

func newDashboardRouter(t *testing.T) *dashboardFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	courses := &mockCourseRepo{
		courses: []domain.Course{{ID: "c1", Title: "DevOps Launchpad", Slug: "devops-launchpad"}},
		modules: []domain.CourseModule{{ID: "m1", CourseID: "c1", Title: "Basics", Position: 0}},
		lessons: []domain.Lesson{
			{ID: "l1", ModuleID: "m1", Title: "Intro", Slug: "intro", Position: 0, IsFreePreview: true},
			{ID: "l2", ModuleID: "m1", Title: "Deep dive", Slug: "deep-dive", Position: 1},
		},
	}
	progress := &mockProgressRepo{}
	enrollments := newMockEnrollmentRepo()
	users := newMockUserRepo()

	jwtSvc := service.NewJWTServiceWithStore("secret", 15*time.Minute, 30*time.Minute, service.NewMemoryRefreshTokenStore())
	dashSvc := service.NewDashboardService(
		logger,
		service.NewCatalogService(logger, courses),
		service.NewEnrollmentService(enrollments, users),
		courses,
		progress,
		service.NewSlidingWindowLimiter(service.DashboardRateWindow, service.DashboardRateLimit),
		"/pricing",
		"/preview",
	)
	dashH := NewDashboardHandler(logger, dashSvc, false)
	progressH := NewProgressHandler(logger, courses, progress, false)

	r := gin.New()
	protected := r.Group("", JWTAuthMiddleware(jwtSvc))
	protected.GET("/dashboard", dashH.GetDashboard)
	protected.POST("/lessons/:id/view", progressH.RecordView)
	protected.POST("/lessons/:id/complete", progressH.MarkCompleted)
	return &dashboardFixture{router: r, jwtSvc: jwtSvc, courses: courses, progress: progress, enrollments: enrollments}
}

func (fx *dashboardFixture) accessToken(t *testing.T, userID string) string {
	t.Helper()
	verifiedAt := time.Now().UTC()
	pair, err := fx.jwtSvc.GeneratePair(domain.User{
		ID:              userID,
		Email:           userID + "@example.com",
		Name:            "Tester",
		EmailVerifiedAt: &verifiedAt,
	})
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	return pair.AccessToken
}

func (fx *dashboardFixture) do(t *testing.T, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	return rec
}

func TestGetDashboard_RequiresAuth(t *testing.T) {
	fx := newDashboardRouter(t)

	rec := fx.do(t, http.MethodGet, "/dashboard", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestGetDashboard_ReturnsPayloadAndCacheHeader(t *testing.T) {
	fx := newDashboardRouter(t)
	fx.enrollments.put(domain.Enrollment{UserID: "u1", CourseID: "c1", Status: domain.EnrollmentActive})

	rec := fx.do(t, http.MethodGet, "/dashboard?courseId=devops-launchpad", fx.accessToken(t, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Cache-Control"); got != "private, max-age=30" {
		t.Fatalf("unexpected Cache-Control %q", got)
	}

	var payload service.DashboardPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Course.Slug != "devops-launchpad" {
		t.Fatalf("unexpected course %+v", payload.Course)
	}
	if payload.Enrollment.Status != service.AccessEnrolled {
		t.Fatalf("expected enrolled, got %+v", payload.Enrollment)
	}
	if len(payload.Progress.Modules) != 1 || payload.Progress.Modules[0].Total != 2 {
		t.Fatalf("unexpected modules %+v", payload.Progress.Modules)
	}
	if payload.CTAs != nil {
		t.Fatalf("enrolled user must not get CTAs")
	}
}

func TestGetDashboard_CourseNotFound(t *testing.T) {
	fx := newDashboardRouter(t)

	rec := fx.do(t, http.MethodGet, "/dashboard?courseId=missing", fx.accessToken(t, "u1"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %q", body.Code)
	}
}

func TestGetDashboard_RateLimited(t *testing.T) {
	fx := newDashboardRouter(t)
	token := fx.accessToken(t, "u1")

	for i := 0; i < service.DashboardRateLimit; i++ {
		if rec := fx.do(t, http.MethodGet, "/dashboard", token); rec.Code != http.StatusOK {
			t.Fatalf("request %d expected 200, got %d", i+1, rec.Code)
		}
	}
	rec := fx.do(t, http.MethodGet, "/dashboard", token)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 above the limit, got %d", rec.Code)
	}
}

func TestProgressEndpoints(t *testing.T) {
	fx := newDashboardRouter(t)
	fx.enrollments.put(domain.Enrollment{UserID: "u1", CourseID: "c1", Status: domain.EnrollmentActive})
	token := fx.accessToken(t, "u1")

	rec := fx.do(t, http.MethodPost, "/lessons/l1/view", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("view expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = fx.do(t, http.MethodPost, "/lessons/l2/complete", token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("complete expected 204, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = fx.do(t, http.MethodPost, "/lessons/nope/view", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown lesson expected 404, got %d", rec.Code)
	}

	// El progreso escrito se refleja en el dashboard.
	rec = fx.do(t, http.MethodGet, "/dashboard", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard expected 200, got %d", rec.Code)
	}
	var payload service.DashboardPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Progress.OverallPercent != 50 {
		t.Fatalf("expected 50%% after one completion, got %d", payload.Progress.OverallPercent)
	}
	if payload.Resume == nil {
		t.Fatalf("expected resume target")
	}
}
