package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenManager_Issue(t *testing.T) {
	m := NewResetTokenManager(15 * time.Minute)

	token, err := m.Issue()
	require.NoError(t, err)

	// 32 random bytes, hex encoded
	assert.Len(t, token.Plain, 64)
	assert.Len(t, token.Hash, 64)
	assert.NotEqual(t, token.Plain, token.Hash)
	assert.Equal(t, m.HashToken(token.Plain), token.Hash)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), token.ExpiresAt, 2*time.Second)

	second, err := m.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, token.Plain, second.Plain)
}

func TestResetTokenManager_Verify(t *testing.T) {
	m := NewResetTokenManager(15 * time.Minute)
	token, err := m.Issue()
	require.NoError(t, err)

	assert.True(t, m.Verify(token.Plain, &token.Hash, &token.ExpiresAt))
	assert.False(t, m.Verify("wrong-token", &token.Hash, &token.ExpiresAt))
	assert.False(t, m.Verify("", &token.Hash, &token.ExpiresAt))
}

func TestResetTokenManager_VerifyExpired(t *testing.T) {
	m := NewResetTokenManager(15 * time.Minute)
	token, err := m.Issue()
	require.NoError(t, err)

	// Advance the clock past the expiry.
	m.now = func() time.Time { return token.ExpiresAt.Add(time.Second) }
	assert.False(t, m.Verify(token.Plain, &token.Hash, &token.ExpiresAt))

	// Exactly at expiry is also too late.
	m.now = func() time.Time { return token.ExpiresAt }
	assert.False(t, m.Verify(token.Plain, &token.Hash, &token.ExpiresAt))
}

func TestResetTokenManager_VerifyClearedRecord(t *testing.T) {
	m := NewResetTokenManager(15 * time.Minute)
	token, err := m.Issue()
	require.NoError(t, err)

	// A consumed or superseded token leaves both fields nil; the check
	// must fail the same way as for a token that never existed.
	assert.False(t, m.Verify(token.Plain, nil, nil))
	assert.False(t, m.Verify(token.Plain, &token.Hash, nil))
	assert.False(t, m.Verify(token.Plain, nil, &token.ExpiresAt))
}
