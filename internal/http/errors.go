package http

import "github.com/gin-gonic/gin"

// Codigos de error del contrato de la API.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeRateLimit       = "RATE_LIMIT"
	CodeNotFound        = "NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeTurnstileFailed = "TURNSTILE_FAILED"
	CodeEmailExists     = "EMAIL_EXISTS"
	CodeEmailFailed     = "EMAIL_FAILED"
	CodeServerError     = "SERVER_ERROR"
)

// respondError escribe el shape estructurado de error; ningun detalle interno
// cruza este borde salvo en modo desarrollo.
func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"code": code, "message": message})
}

// serverErrorMessage decide cuanto detalle exponer en fallos internos.
func serverErrorMessage(dev bool, err error) string {
	if dev && err != nil {
		return err.Error()
	}
	return "Something went wrong"
}
