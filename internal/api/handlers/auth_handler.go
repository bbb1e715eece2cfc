package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/lmoren/credstore-be/internal/apperr"
	"github.com/lmoren/credstore-be/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for the credential lifecycle.
type AuthHandler struct {
	service  services.AuthServiceProvider
	tokenTTL time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{service: service, tokenTTL: tokenTTL}
}

// CredentialsPayload defines the structure for register and login requests.
type CredentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "Invalid request body"))
		return
	}

	result, err := h.service.Register(payload.Email, payload.Password)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindInternal {
			log.Warn().Err(err).Msg("Registration rejected")
		}
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusCreated, result)
}

// Login handles user authentication and session token issuance.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload CredentialsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "Invalid request body"))
		return
	}

	result, err := h.service.Login(payload.Email, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, result)
}

// ForgotPassword issues a password reset token. The response body is
// identical for known and unknown emails apart from the token field, so
// the endpoint cannot be used to probe for accounts. The plaintext token
// is returned directly instead of being emailed; delivery is an explicit
// integration point left to the deployment.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "Invalid request body"))
		return
	}

	resetToken, err := h.service.ForgotPassword(payload.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Message    string `json:"message"`
		ResetToken string `json:"resetToken,omitempty"`
	}{
		Message:    services.MsgForgotPasswordAck,
		ResetToken: resetToken,
	})
}

// ResetPassword redeems a reset token for a new password. The token alone
// authenticates the request; no session is required.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token       string `json:"token"`
		NewPassword string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apperr.New(apperr.KindValidation, "Invalid request body"))
		return
	}

	result, err := h.service.ResetPassword(payload.Token, payload.NewPassword)
	if err != nil {
		writeError(w, err)
		return
	}

	h.setTokenCookie(w, result.Token)
	writeJSON(w, http.StatusOK, struct {
		Message string `json:"message"`
		services.AuthResult
	}{
		Message:    "Password reset successful",
		AuthResult: result,
	})
}

// setTokenCookie mirrors the session token into an HttpOnly cookie for
// browser clients. Secure flag depends on the environment.
func (h *AuthHandler) setTokenCookie(w http.ResponseWriter, token string) {
	isProd := os.Getenv("APP_ENV") == "production"

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}
