package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// resetTokenBytes gives 256 bits of entropy per token.
const resetTokenBytes = 32

// ResetToken is the result of issuing a password reset token. Plain is
// the only copy of the plaintext that will ever exist; callers hand it to
// the user and persist only Hash and ExpiresAt.
type ResetToken struct {
	Plain     string
	Hash      string
	ExpiresAt time.Time
}

// ResetTokenManager issues and checks single-use password reset tokens.
// Tokens are high-entropy and single-use, so a fixed unsalted SHA-256 is
// enough for the stored form.
type ResetTokenManager struct {
	ttl time.Duration
	now func() time.Time
}

// NewResetTokenManager creates a manager issuing tokens valid for ttl.
func NewResetTokenManager(ttl time.Duration) *ResetTokenManager {
	return &ResetTokenManager{ttl: ttl, now: time.Now}
}

// Issue generates a new random reset token with its stored hash and
// absolute expiry.
func (m *ResetTokenManager) Issue() (ResetToken, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return ResetToken{}, fmt.Errorf("failed to generate reset token: %w", err)
	}
	plain := hex.EncodeToString(buf)
	return ResetToken{
		Plain:     plain,
		Hash:      m.HashToken(plain),
		ExpiresAt: m.now().Add(m.ttl),
	}, nil
}

// HashToken computes the stored form of a token.
func (m *ResetTokenManager) HashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether a presented token matches the stored hash and is
// still within its expiry. A cleared record (consumed or superseded
// token) fails exactly like a never-issued one.
func (m *ResetTokenManager) Verify(presented string, storedHash *string, expiresAt *time.Time) bool {
	if storedHash == nil || expiresAt == nil {
		return false
	}
	if !m.now().Before(*expiresAt) {
		return false
	}
	candidate := m.HashToken(presented)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(*storedHash)) == 1
}
