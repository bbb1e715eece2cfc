package services

import (
	"database/sql"

	"github.com/google/uuid"
	"github.com/lmoren/credstore-be/internal/models"
)

// EventServiceProvider defines the interface for the audit-event trail.
type EventServiceProvider interface {
	CreateEvent(eventType, level, message string, userID *string) error
	GetRecentEvents(limit int) ([]models.AuditEvent, error)
}

// EventService records security-relevant auth activity. Event messages
// are static; credentials and token material never reach this table.
type EventService struct {
	db *sql.DB
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{db: db}
}

// CreateEvent logs a new audit event to the database.
func (s *EventService) CreateEvent(eventType, level, message string, userID *string) error {
	event := models.AuditEvent{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		UserID:  userID,
	}

	_, err := s.db.Exec(
		"INSERT INTO auth_events (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)",
		event.ID, event.Type, event.Level, event.Message, event.UserID,
	)
	return err
}

// GetRecentEvents retrieves the most recent audit events.
func (s *EventService) GetRecentEvents(limit int) ([]models.AuditEvent, error) {
	rows, err := s.db.Query(
		"SELECT id, type, level, message, user_id, created_at FROM auth_events ORDER BY created_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.AuditEvent{}
	for rows.Next() {
		var event models.AuditEvent
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
