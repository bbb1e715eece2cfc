package handlers

import (
	"net/http"
	"strconv"

	"github.com/lmoren/credstore-be/internal/apperr"
	"github.com/lmoren/credstore-be/internal/services"
)

// EventHandler handles HTTP requests for the audit-event trail.
type EventHandler struct {
	service services.EventServiceProvider
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(service services.EventServiceProvider) *EventHandler {
	return &EventHandler{service: service}
}

// GetRecent returns the most recent audit events, newest first.
func (h *EventHandler) GetRecent(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			writeError(w, apperr.New(apperr.KindValidation, "Invalid limit"))
			return
		}
		limit = n
	}

	events, err := h.service.GetRecentEvents(limit)
	if err != nil {
		writeError(w, apperr.Wrap(apperr.KindInternal, "failed to load events", err))
		return
	}

	writeJSON(w, http.StatusOK, events)
}
