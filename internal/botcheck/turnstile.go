package botcheck

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const turnstileVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Verifier valida un challenge anti-bot; sin configuracion siempre pasa.
type Verifier interface {
	Verify(ctx context.Context, token string) bool
}

// TurnstileVerifier valida tokens contra el endpoint siteverify de Cloudflare.
type TurnstileVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    *zap.Logger
}

func NewTurnstileVerifier(secret string, logger *zap.Logger) *TurnstileVerifier {
	return &TurnstileVerifier{
		secret:    strings.TrimSpace(secret),
		verifyURL: turnstileVerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

// Verify consulta siteverify; ante errores de red falla abierto para no
// bloquear signups legitimos por una caida del proveedor.
func (v *TurnstileVerifier) Verify(ctx context.Context, token string) bool {
	if v.secret == "" {
		if v.logger != nil {
			v.logger.Warn("turnstile secret not set; skipping verification")
		}
		return true
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		if v.logger != nil {
			v.logger.Warn("turnstile request failed", zap.Error(err))
		}
		return true
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return false
	}
	return result.Success
}
