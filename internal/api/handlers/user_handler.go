package handlers

import (
	"net/http"

	"github.com/lmoren/credstore-be/internal/apperr"
	"github.com/lmoren/credstore-be/internal/auth"
	"github.com/lmoren/credstore-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests about the authenticated user.
type UserHandler struct {
	service services.AuthServiceProvider
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.AuthServiceProvider) *UserHandler {
	return &UserHandler{service: service}
}

// GetMe retrieves the currently authenticated user from the token claims.
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		writeError(w, apperr.New(apperr.KindUnauthorized, "Unauthorized"))
		return
	}

	user, err := h.service.GetUserByID(claims.Subject)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.Subject).Msg("User from token not found")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
