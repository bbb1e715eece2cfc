package models

import "time"

// User represents a user account in the system. ResetTokenHash and
// ResetTokenExpiresAt are set together while a password reset is
// outstanding and cleared together when the token is consumed, superseded
// or reaped.
type User struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	PasswordHash        string     `json:"-"` // Never expose this to the client
	Role                string     `json:"role"`
	ResetTokenHash      *string    `json:"-"`
	ResetTokenExpiresAt *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Public returns the client-safe view of the user.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// PublicUser is the user summary returned by the API. It never carries
// the password hash or any reset-token state.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
