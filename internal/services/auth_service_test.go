package services

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lmoren/credstore-be/internal/apperr"
	"github.com/lmoren/credstore-be/internal/auth"
	"github.com/lmoren/credstore-be/internal/database"
	"github.com/lmoren/credstore-be/internal/store"
)

type authFixture struct {
	service *AuthService
	store   *store.UserStore
	resets  *auth.ResetTokenManager
	tokens  *auth.TokenIssuer
	events  *EventService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	userStore := store.NewUserStore(db)
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	resets := auth.NewResetTokenManager(15 * time.Minute)
	tokens := auth.NewTokenIssuer("this-is-a-32-character-secret!!!", time.Hour)
	events := NewEventService(db)

	return &authFixture{
		service: NewAuthService(userStore, hasher, resets, tokens, events),
		store:   userStore,
		resets:  resets,
		tokens:  tokens,
		events:  events,
	}
}

func TestAuthService_RegisterValidation(t *testing.T) {
	f := newAuthFixture(t)

	for _, tt := range []struct{ email, password string }{
		{"", ""},
		{"alice@example.com", ""},
		{"", "secret123"},
		{"   ", "secret123"},
	} {
		_, err := f.service.Register(tt.email, tt.password)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	}
}

func TestAuthService_RegisterThenLogin(t *testing.T) {
	f := newAuthFixture(t)

	registered, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", registered.User.Email)
	assert.Equal(t, "user", registered.User.Role)
	assert.NotEmpty(t, registered.User.ID)

	claims, err := f.tokens.Verify(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)

	loggedIn, err := f.service.Login("alice@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	claims, err = f.tokens.Verify(loggedIn.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)
}

func TestAuthService_RegisterNormalizesEmail(t *testing.T) {
	f := newAuthFixture(t)

	registered, err := f.service.Register("  Alice@Example.COM ", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", registered.User.Email)

	// Login works with any casing of the same address.
	_, err = f.service.Login("ALICE@example.com", "secret123")
	assert.NoError(t, err)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)

	_, err = f.service.Register("Alice@Example.com", "other456")
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestAuthService_LoginFailuresAreIndistinguishable(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)

	_, unknownErr := f.service.Login("nobody@example.com", "secret123")
	_, wrongPwErr := f.service.Login("alice@example.com", "wrong-password")

	require.Error(t, unknownErr)
	require.Error(t, wrongPwErr)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(unknownErr))
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(wrongPwErr))
	// Byte-identical: no account enumeration through error text.
	assert.Equal(t, unknownErr.Error(), wrongPwErr.Error())
	assert.Equal(t, MsgInvalidCredentials, apperr.MessageOf(unknownErr))
}

func TestAuthService_ForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	// No error and no token: the caller answers with the same
	// acknowledgement either way.
	token, err := f.service.ForgotPassword("nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAuthService_ForgotPasswordStoresOnlyHash(t *testing.T) {
	f := newAuthFixture(t)
	registered, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)

	plain, err := f.service.ForgotPassword("alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, plain)

	user, err := f.store.GetUserByID(registered.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.ResetTokenHash)
	require.NotNil(t, user.ResetTokenExpiresAt)
	assert.NotEqual(t, plain, *user.ResetTokenHash)
	assert.Equal(t, f.resets.HashToken(plain), *user.ResetTokenHash)

	// A second request supersedes the first token.
	second, err := f.service.ForgotPassword("alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, plain, second)

	_, err = f.service.ResetPassword(plain, "newSecret456")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestAuthService_ResetPasswordFlow(t *testing.T) {
	f := newAuthFixture(t)
	registered, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)

	plain, err := f.service.ForgotPassword("alice@example.com")
	require.NoError(t, err)

	result, err := f.service.ResetPassword(plain, "newSecret456")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, result.User.ID)

	claims, err := f.tokens.Verify(result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)

	// Old password no longer works, the new one does.
	_, err = f.service.Login("alice@example.com", "secret123")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	_, err = f.service.Login("alice@example.com", "newSecret456")
	assert.NoError(t, err)

	// Single use: redeeming the same token again fails generically.
	_, err = f.service.ResetPassword(plain, "thirdSecret789")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.Equal(t, MsgInvalidResetToken, apperr.MessageOf(err))
}

func TestAuthService_ResetPasswordExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	registered, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)

	plain, err := f.service.ForgotPassword("alice@example.com")
	require.NoError(t, err)

	// Backdate the stored expiry to simulate the clock advancing.
	require.NoError(t, f.store.SetResetToken(registered.User.ID, f.resets.HashToken(plain), time.Now().Add(-time.Second)))

	_, err = f.service.ResetPassword(plain, "newSecret456")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.Equal(t, MsgInvalidResetToken, apperr.MessageOf(err))
}

func TestAuthService_ResetPasswordValidation(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.ResetPassword("", "newSecret456")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	_, err = f.service.ResetPassword("some-token", "")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestAuthService_ConcurrentResetExactlyOneWins(t *testing.T) {
	f := newAuthFixture(t)
	_, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)

	plain, err := f.service.ForgotPassword("alice@example.com")
	require.NoError(t, err)

	const attempts = 4
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.ResetPassword(plain, "newSecret456")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
		}
	}
	assert.Equal(t, 1, successes)
}

func TestAuthService_AuditTrail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)
	_, err = f.service.Login("alice@example.com", "wrong-password")
	require.Error(t, err)
	plain, err := f.service.ForgotPassword("alice@example.com")
	require.NoError(t, err)
	_, err = f.service.ResetPassword(plain, "newSecret456")
	require.NoError(t, err)

	events, err := f.events.GetRecentEvents(50)
	require.NoError(t, err)

	types := map[string]bool{}
	for _, event := range events {
		types[event.Type] = true
		// The trail must never carry secrets.
		assert.NotContains(t, event.Message, "secret123")
		assert.NotContains(t, event.Message, plain)
	}
	assert.True(t, types["user.registered"])
	assert.True(t, types["auth.login_failed"])
	assert.True(t, types["auth.reset_requested"])
	assert.True(t, types["auth.password_reset"])
}

func TestAuthService_GetUserByID(t *testing.T) {
	f := newAuthFixture(t)
	registered, err := f.service.Register("alice@example.com", "secret123")
	require.NoError(t, err)

	user, err := f.service.GetUserByID(registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = f.service.GetUserByID("missing-id")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
