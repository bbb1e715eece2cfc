package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lmoren/credstore-be/internal/models"
)

// Sentinel errors returned by the user store.
var (
	// ErrNotFound indicates no user matched the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail indicates the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserStoreProvider defines the interface for the credential store.
type UserStoreProvider interface {
	CreateUser(email, passwordHash, role string) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
	GetUserByID(id string) (models.User, error)
	SetResetToken(userID, tokenHash string, expiresAt time.Time) error
	ConsumeResetToken(tokenHash, newPasswordHash string, now time.Time) (models.User, error)
	ClearExpiredResetTokens(now time.Time) (int64, error)
}

// UserStore persists user records in SQLite. Email uniqueness is enforced
// case-insensitively by the schema; callers are expected to pass
// normalized (trimmed, lowercased) emails.
type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

const userColumns = "id, email, password_hash, role, reset_token_hash, reset_token_expires_at, created_at, updated_at"

// CreateUser inserts a new user record with a fresh ID and timestamps.
func (s *UserStore) CreateUser(email, passwordHash, role string) (models.User, error) {
	now := time.Now().UTC()
	user := models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	_, err := s.db.Exec(
		"INSERT INTO users(id, email, password_hash, role, created_at, updated_at) VALUES(?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email, including credential fields.
func (s *UserStore) GetUserByEmail(email string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE email = ?", email)
	return scanUser(row)
}

// GetUserByID retrieves a user by ID.
func (s *UserStore) GetUserByID(id string) (models.User, error) {
	row := s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id)
	return scanUser(row)
}

// SetResetToken records the hash and expiry of a newly issued reset
// token, overwriting any prior outstanding token for the user.
func (s *UserStore) SetResetToken(userID, tokenHash string, expiresAt time.Time) error {
	res, err := s.db.Exec(
		"UPDATE users SET reset_token_hash = ?, reset_token_expires_at = ?, updated_at = ? WHERE id = ?",
		tokenHash, expiresAt.Unix(), time.Now().UTC(), userID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeResetToken atomically redeems a reset token: in one conditional
// update it matches the stored hash, checks the expiry is still in the
// future, replaces the password hash and clears both reset fields. Under
// concurrent attempts with the same token exactly one caller gets the
// user back; every other caller gets ErrNotFound, indistinguishable from
// a token that never existed.
func (s *UserStore) ConsumeResetToken(tokenHash, newPasswordHash string, now time.Time) (models.User, error) {
	row := s.db.QueryRow(
		`UPDATE users
		 SET password_hash = ?, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = ?
		 WHERE reset_token_hash = ? AND reset_token_expires_at > ?
		 RETURNING `+userColumns,
		newPasswordHash, now.UTC(), tokenHash, now.Unix(),
	)
	return scanUser(row)
}

// ClearExpiredResetTokens removes reset-token state whose expiry has
// passed, returning how many records were cleared.
func (s *UserStore) ClearExpiredResetTokens(now time.Time) (int64, error) {
	res, err := s.db.Exec(
		"UPDATE users SET reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = ? WHERE reset_token_expires_at IS NOT NULL AND reset_token_expires_at <= ?",
		now.UTC(), now.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanUser(row *sql.Row) (models.User, error) {
	var user models.User
	var resetHash sql.NullString
	var resetExpiry sql.NullInt64
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role,
		&resetHash, &resetExpiry, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	if resetHash.Valid {
		user.ResetTokenHash = &resetHash.String
	}
	if resetExpiry.Valid {
		t := time.Unix(resetExpiry.Int64, 0).UTC()
		user.ResetTokenExpiresAt = &t
	}
	return user, nil
}
