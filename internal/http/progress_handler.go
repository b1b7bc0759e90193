package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"launchpad/internal/repository"
)

// ProgressHandler mantiene dependencias para los upserts de progreso.
type ProgressHandler struct {
	logger   *zap.Logger
	courses  repository.CourseRepository
	progress repository.ProgressRepository
	dev      bool
}

func NewProgressHandler(logger *zap.Logger, courses repository.CourseRepository, progress repository.ProgressRepository, dev bool) *ProgressHandler {
	return &ProgressHandler{
		logger:   logger,
		courses:  courses,
		progress: progress,
		dev:      dev,
	}
}

// RecordView maneja POST /lessons/:id/view.
func (h *ProgressHandler) RecordView(c *gin.Context) {
	h.upsert(c, func(userID, lessonID string, now time.Time) error {
		return h.progress.RecordView(c.Request.Context(), userID, lessonID, now)
	})
}

// MarkCompleted maneja POST /lessons/:id/complete.
func (h *ProgressHandler) MarkCompleted(c *gin.Context) {
	h.upsert(c, func(userID, lessonID string, now time.Time) error {
		return h.progress.MarkCompleted(c.Request.Context(), userID, lessonID, now)
	})
}

func (h *ProgressHandler) upsert(c *gin.Context, write func(userID, lessonID string, now time.Time) error) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		return
	}

	lessonID := c.Param("id")
	if _, err := h.courses.GetLesson(c.Request.Context(), lessonID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, CodeNotFound, "Lesson not found")
			return
		}
		h.logger.Error("get lesson failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeServerError, serverErrorMessage(h.dev, err))
		return
	}

	if err := write(claims.UserID, lessonID, time.Now().UTC()); err != nil {
		h.logger.Error("upsert progress failed", zap.Error(err), zap.String("lesson_id", lessonID))
		respondError(c, http.StatusInternalServerError, CodeServerError, serverErrorMessage(h.dev, err))
		return
	}
	c.Status(http.StatusNoContent)
}
