package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchpad/internal/service"
)

// NewRouter configura el router de Gin con middlewares y rutas.
func NewRouter(
	logger *zap.Logger,
	jwtSvc *service.JWTService,
	authH *AuthHandler,
	dashH *DashboardHandler,
	progressH *ProgressHandler,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y JSON content-type.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), jsonContentTypeMiddleware())

	auth := r.Group("/auth")
	auth.POST("/signup", authH.Signup)
	auth.POST("/login", authH.Login)
	auth.GET("/verify", authH.VerifyEmail)
	auth.POST("/verify/resend", authH.ResendVerification)
	auth.POST("/password/reset-request", authH.RequestPasswordReset)
	auth.POST("/password/reset-confirm", authH.ConfirmPasswordReset)
	auth.POST("/refresh", authH.RefreshToken)
	auth.POST("/logout", authH.Logout)

	// Rutas con sesion requerida.
	protected := r.Group("", JWTAuthMiddleware(jwtSvc))
	protected.GET("/dashboard", dashH.GetDashboard)
	protected.POST("/lessons/:id/view", progressH.RecordView)
	protected.POST("/lessons/:id/complete", progressH.MarkCompleted)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// jsonContentTypeMiddleware fuerza Content-Type: application/json en responses.
func jsonContentTypeMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Next()
	}
}
