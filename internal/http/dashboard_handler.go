package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchpad/internal/service"
)

// DashboardHandler mantiene dependencias para el endpoint del dashboard.
type DashboardHandler struct {
	logger   *zap.Logger
	dashServ *service.DashboardService
	dev      bool
}

func NewDashboardHandler(logger *zap.Logger, dashServ *service.DashboardService, dev bool) *DashboardHandler {
	return &DashboardHandler{
		logger:   logger,
		dashServ: dashServ,
		dev:      dev,
	}
}

// GetDashboard maneja GET /dashboard?courseId=...
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	claims, ok := GetAuthClaims(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Authentication required")
		return
	}

	identity := service.Identity{
		ID:            claims.UserID,
		Email:         claims.Email,
		Name:          claims.Name,
		EmailVerified: claims.EmailVerified,
	}

	payload, err := h.dashServ.Build(c.Request.Context(), identity, c.Query("courseId"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRateLimited):
			respondError(c, http.StatusTooManyRequests, CodeRateLimit, "Too many requests")
		case errors.Is(err, service.ErrCourseNotFound):
			respondError(c, http.StatusNotFound, CodeNotFound, "Course not found")
		default:
			h.logger.Error("build dashboard failed", zap.Error(err), zap.String("user_id", identity.ID))
			respondError(c, http.StatusInternalServerError, CodeServerError, serverErrorMessage(h.dev, err))
		}
		return
	}

	c.Header("Cache-Control", "private, max-age=30")
	c.JSON(http.StatusOK, payload)
}
