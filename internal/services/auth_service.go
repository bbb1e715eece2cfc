package services

import (
	"errors"
	"strings"
	"time"

	"github.com/lmoren/credstore-be/internal/apperr"
	"github.com/lmoren/credstore-be/internal/auth"
	"github.com/lmoren/credstore-be/internal/models"
	"github.com/lmoren/credstore-be/internal/store"
	"github.com/rs/zerolog/log"
)

// Messages returned across the trust boundary. Login failures share one
// message whether the email is unknown or the password wrong, and reset
// failures never say whether a token ever existed, so neither flow can be
// used to enumerate accounts.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgInvalidResetToken  = "Invalid or expired token"
	MsgForgotPasswordAck  = "If an account with that email exists, a reset token has been generated"
)

const defaultRole = "user"

// AuthResult is the outcome of an operation that logs the caller in.
type AuthResult struct {
	User  models.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// AuthServiceProvider defines the interface for the auth orchestrator.
type AuthServiceProvider interface {
	Register(email, password string) (AuthResult, error)
	Login(email, password string) (AuthResult, error)
	ForgotPassword(email string) (string, error)
	ResetPassword(token, newPassword string) (AuthResult, error)
	GetUserByID(id string) (models.PublicUser, error)
}

// AuthService composes the credential store, password hasher, reset-token
// manager and session-token issuer into the register / login / forgot /
// reset operations. It holds no mutable state of its own.
type AuthService struct {
	store  store.UserStoreProvider
	hasher *auth.PasswordHasher
	resets *auth.ResetTokenManager
	tokens *auth.TokenIssuer
	events EventServiceProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(s store.UserStoreProvider, hasher *auth.PasswordHasher, resets *auth.ResetTokenManager, tokens *auth.TokenIssuer, events EventServiceProvider) *AuthService {
	return &AuthService{store: s, hasher: hasher, resets: resets, tokens: tokens, events: events}
}

// NormalizeEmail trims and lowercases an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with a hashed password and logs them in.
func (s *AuthService) Register(email, password string) (AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, apperr.New(apperr.KindValidation, "Email and password required")
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user, err := s.store.CreateUser(email, passwordHash, defaultRole)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			return AuthResult{}, apperr.New(apperr.KindConflict, "User already exists")
		}
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "failed to issue session token", err)
	}

	s.audit("user.registered", "info", "new user registered", &user.ID)
	return AuthResult{User: user.Public(), Token: token}, nil
}

// Login verifies credentials and issues a session token. An unknown email
// and a wrong password fail identically.
func (s *AuthService) Login(email, password string) (AuthResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, apperr.New(apperr.KindValidation, "Email and password required")
	}

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.audit("auth.login_failed", "warn", "failed login attempt", nil)
			return AuthResult{}, apperr.New(apperr.KindAuth, MsgInvalidCredentials)
		}
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.audit("auth.login_failed", "warn", "failed login attempt", &user.ID)
		return AuthResult{}, apperr.New(apperr.KindAuth, MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "failed to issue session token", err)
	}

	s.audit("auth.login", "info", "user logged in", &user.ID)
	return AuthResult{User: user.Public(), Token: token}, nil
}

// ForgotPassword issues a reset token for the account, if one exists. The
// returned plaintext is empty for unknown emails; callers must answer
// both cases with the same acknowledgement. Issuing a new token
// overwrites any prior outstanding one.
func (s *AuthService) ForgotPassword(email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", apperr.New(apperr.KindValidation, "Email required")
	}

	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}

	reset, err := s.resets.Issue()
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to issue reset token", err)
	}

	if err := s.store.SetResetToken(user.ID, reset.Hash, reset.ExpiresAt); err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "failed to store reset token", err)
	}

	s.audit("auth.reset_requested", "info", "password reset token issued", &user.ID)
	return reset.Plain, nil
}

// ResetPassword redeems a reset token and sets a new password. Redemption
// is a single conditional update in the store, so a token is consumed at
// most once even under concurrent attempts. The reset token alone proves
// email ownership; no session is required, since a locked-out user has
// none. On success a fresh session token is issued as a convenience
// login.
func (s *AuthService) ResetPassword(token, newPassword string) (AuthResult, error) {
	if token == "" || newPassword == "" {
		return AuthResult{}, apperr.New(apperr.KindValidation, "Token and new password required")
	}

	passwordHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user, err := s.store.ConsumeResetToken(s.resets.HashToken(token), passwordHash, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AuthResult{}, apperr.New(apperr.KindAuth, MsgInvalidResetToken)
		}
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "failed to consume reset token", err)
	}

	sessionToken, err := s.tokens.Issue(user)
	if err != nil {
		return AuthResult{}, apperr.Wrap(apperr.KindInternal, "failed to issue session token", err)
	}

	s.audit("auth.password_reset", "info", "password reset completed", &user.ID)
	return AuthResult{User: user.Public(), Token: sessionToken}, nil
}

// GetUserByID returns the summary for an authenticated user.
func (s *AuthService) GetUserByID(id string) (models.PublicUser, error) {
	user, err := s.store.GetUserByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.PublicUser{}, apperr.New(apperr.KindUnauthorized, "Unauthorized")
		}
		return models.PublicUser{}, apperr.Wrap(apperr.KindInternal, "failed to look up user", err)
	}
	return user.Public(), nil
}

// audit records an event without letting trail failures break the auth
// operation itself.
func (s *AuthService) audit(eventType, level, message string, userID *string) {
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(eventType, level, message, userID); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record audit event")
	}
}
