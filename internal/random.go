package internal

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

// NewFlowID returns the correlation id for one in-flight registration or
// recovery attempt. Random v4 UUIDs keep concurrent flows independent even
// for the same identity.
func NewFlowID() string {
	return uuid.NewString()
}

// NewSessionID returns the id for a freshly created session.
func NewSessionID() string {
	return uuid.NewString()
}

// NewInviteCode returns a numeric registration code of the given length.
// These codes gate account creation, so they are drawn from crypto/rand,
// never from a general-purpose random source.
func NewInviteCode(digits int) (string, error) {
	if digits < 6 || digits > 10 {
		return "", errors.New("invalid invite code length")
	}

	var b strings.Builder
	b.Grow(digits)

	max := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// HashCode returns the storage digest of an invite code. Only the digest is
// persisted.
func HashCode(code string) [32]byte {
	return sha256.Sum256([]byte(code))
}
