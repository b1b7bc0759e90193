package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"launchpad/internal/botcheck"
	"launchpad/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de cuenta.
type AuthHandler struct {
	logger   *zap.Logger
	authServ *service.AuthService
	jwtServ  *service.JWTService
	verifier botcheck.Verifier
	dev      bool
}

func NewAuthHandler(logger *zap.Logger, authServ *service.AuthService, jwtServ *service.JWTService, verifier botcheck.Verifier, dev bool) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		authServ: authServ,
		jwtServ:  jwtServ,
		verifier: verifier,
		dev:      dev,
	}
}

// Signup maneja POST /auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req struct {
		Email          string `json:"email" binding:"required"`
		Password       string `json:"password" binding:"required"`
		Name           string `json:"name"`
		TurnstileToken string `json:"turnstileToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Email and password are required")
		return
	}

	if req.TurnstileToken != "" && h.verifier != nil && !h.verifier.Verify(c.Request.Context(), req.TurnstileToken) {
		respondError(c, http.StatusBadRequest, CodeTurnstileFailed, "Verification failed. Please try again.")
		return
	}

	_, err := h.authServ.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.respondAuthError(c, err, "signup failed")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Check your email to verify your account."})
}

// Login maneja POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Email and password are required")
		return
	}

	user, err := h.authServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeServerError, serverErrorMessage(h.dev, err))
		return
	}

	tokens, err := h.jwtServ.GeneratePair(user)
	if err != nil {
		h.logger.Error("jwt issue failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeServerError, serverErrorMessage(h.dev, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user, "tokens": tokens})
}

// VerifyEmail maneja GET /auth/verify?token=...&email=...
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	emailAddr := c.Query("email")
	if token == "" || emailAddr == "" {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Token and email are required")
		return
	}

	user, err := h.authServ.VerifyEmail(c.Request.Context(), emailAddr, token)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondError(c, http.StatusBadRequest, CodeInvalidToken, "This link is invalid or has expired.")
			return
		}
		h.logger.Error("verify email failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeServerError, serverErrorMessage(h.dev, err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified. You can sign in.", "user": user})
}

// ResendVerification maneja POST /auth/verify/resend.
// Siempre responde 200 para no revelar si la cuenta existe.
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Valid email is required")
		return
	}

	if err := h.authServ.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.respondAuthError(c, err, "resend verification failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If an account exists, a new verification email was sent."})
}

// RequestPasswordReset maneja POST /auth/password/reset-request.
// Siempre responde 200 para no revelar si la cuenta existe.
func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req struct {
		Email          string `json:"email" binding:"required"`
		TurnstileToken string `json:"turnstileToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Valid email is required")
		return
	}

	if req.TurnstileToken != "" && h.verifier != nil && !h.verifier.Verify(c.Request.Context(), req.TurnstileToken) {
		respondError(c, http.StatusBadRequest, CodeTurnstileFailed, "Verification failed. Please try again.")
		return
	}

	if err := h.authServ.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		h.respondAuthError(c, err, "reset request failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "If an account exists with this email, you will receive a reset link."})
}

// ConfirmPasswordReset maneja POST /auth/password/reset-confirm.
func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req struct {
		Token       string `json:"token" binding:"required"`
		Email       string `json:"email" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Token, email, and new password are required")
		return
	}

	if err := h.authServ.ConfirmPasswordReset(c.Request.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			respondError(c, http.StatusBadRequest, CodeInvalidToken, "This link is invalid or has expired.")
			return
		}
		h.respondAuthError(c, err, "reset confirm failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated. You can sign in now."})
}

// RefreshToken maneja POST /auth/refresh.
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Refresh token is required")
		return
	}
	tokens, err := h.jwtServ.RefreshPair(req.RefreshToken)
	if err != nil {
		respondError(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

// Logout maneja POST /auth/logout.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Refresh token is required")
		return
	}
	_ = h.jwtServ.RevokeRefresh(req.RefreshToken)
	c.Status(http.StatusNoContent)
}

// respondAuthError mapea errores del servicio de cuenta al contrato de la API.
func (h *AuthHandler) respondAuthError(c *gin.Context, err error, logMsg string) {
	var inputErr *service.InputError
	switch {
	case errors.As(err, &inputErr):
		respondError(c, http.StatusBadRequest, CodeInvalidInput, inputErr.Message)
	case errors.Is(err, service.ErrInvalidEmail):
		respondError(c, http.StatusBadRequest, CodeInvalidInput, "Valid email is required")
	case errors.Is(err, service.ErrEmailExists):
		respondError(c, http.StatusConflict, CodeEmailExists, "An account with this email already exists.")
	case errors.Is(err, service.ErrEmailSendFailure):
		respondError(c, http.StatusInternalServerError, CodeEmailFailed, "Could not send email. Please try again.")
	default:
		h.logger.Error(logMsg, zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeServerError, serverErrorMessage(h.dev, err))
	}
}
