package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePinSecret_ExplicitSchemeWins(t *testing.T) {
	// A 64-hex digest tagged bcrypt stays bcrypt: no shape sniffing when tagged.
	digest := strings.Repeat("ab", 32)
	s := ParsePinSecret(digest, SchemeBcrypt)
	assert.False(t, s.IsLegacy())
}

func TestParsePinSecret_UntaggedHexDigestIsLegacy(t *testing.T) {
	s := ParsePinSecret(strings.Repeat("0f", 32), "")
	assert.True(t, s.IsLegacy())
}

func TestParsePinSecret_UntaggedBcryptShape(t *testing.T) {
	s := ParsePinSecret("$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW", "")
	assert.False(t, s.IsLegacy())
}

func TestParsePinSecret_UppercaseHexIsNotLegacy(t *testing.T) {
	// The legacy writer always emitted lowercase hex.
	s := ParsePinSecret(strings.Repeat("AB", 32), "")
	assert.False(t, s.IsLegacy())
}

func TestParsePinSecret_WrongLengthHexIsNotLegacy(t *testing.T) {
	s := ParsePinSecret(strings.Repeat("ab", 16), "")
	assert.False(t, s.IsLegacy())
}

func TestUserAccount_LockedUntil(t *testing.T) {
	now := time.Now().UTC()
	future := now.Add(10 * time.Minute)
	past := now.Add(-time.Minute)

	u := &UserAccount{}
	_, locked := u.LockedUntil(now)
	assert.False(t, locked)

	u.AccountLockedUntil = &past
	_, locked = u.LockedUntil(now)
	assert.False(t, locked)

	u.AccountLockedUntil = &future
	until, locked := u.LockedUntil(now)
	assert.True(t, locked)
	assert.Equal(t, future, until)
}

func TestRetryAfterSeconds_RoundsUp(t *testing.T) {
	e := &RetryAfterError{RetryAfter: 90500 * time.Millisecond}
	assert.Equal(t, 91, e.RetryAfterSeconds())

	e = &RetryAfterError{RetryAfter: 60 * time.Second}
	assert.Equal(t, 60, e.RetryAfterSeconds())

	e = &RetryAfterError{RetryAfter: 0}
	assert.Equal(t, 1, e.RetryAfterSeconds())
}
