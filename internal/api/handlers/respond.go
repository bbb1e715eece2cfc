package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lmoren/credstore-be/internal/apperr"
	"github.com/rs/zerolog/log"
)

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError maps a classified error to its HTTP status and safe message.
// Internal detail is logged here and never crosses the trust boundary.
func writeError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindConflict:
		status = http.StatusConflict
	case apperr.KindAuth, apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindInternal:
		log.Error().Err(err).Msg("Internal error handling request")
	}
	writeJSON(w, status, map[string]string{"message": apperr.MessageOf(err)})
}
