package models

import "time"

// AuditEvent records a security-relevant action in the auth_events table.
// Messages are static descriptions; they never contain passwords, hashes
// or token material.
type AuditEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g. "user.registered", "auth.login_failed"
	Level     string    `json:"level"` // "info" or "warn"
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
