package pinhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/td-studios/auth-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

func TestHash_ProducesSaltedSecret(t *testing.T) {
	h := New(bcrypt.MinCost)

	s, err := h.Hash("1234")
	require.NoError(t, err)

	assert.Equal(t, domain.SchemeBcrypt, s.Scheme)
	assert.NotEqual(t, "1234", s.Digest)
	assert.NotEqual(t, LegacyDigest("1234"), s.Digest)
}

func TestHash_SamePinDifferentDigests(t *testing.T) {
	h := New(bcrypt.MinCost)

	s1, err := h.Hash("1234")
	require.NoError(t, err)
	s2, err := h.Hash("1234")
	require.NoError(t, err)

	assert.NotEqual(t, s1.Digest, s2.Digest)
}

func TestVerify_Bcrypt(t *testing.T) {
	h := New(bcrypt.MinCost)
	s, err := h.Hash("1234")
	require.NoError(t, err)

	assert.True(t, h.Verify("1234", s))
	assert.False(t, h.Verify("4321", s))
}

func TestVerify_LegacyScheme(t *testing.T) {
	h := New(bcrypt.MinCost)
	s := domain.PinSecret{Scheme: domain.SchemeLegacy, Digest: LegacyDigest("1234")}

	assert.True(t, h.Verify("1234", s))
	assert.False(t, h.Verify("4321", s))
}

func TestVerify_LegacyDigestNeverMatchesAsBcrypt(t *testing.T) {
	h := New(bcrypt.MinCost)
	// Same digest bytes, but tagged bcrypt: must not verify.
	s := domain.PinSecret{Scheme: domain.SchemeBcrypt, Digest: LegacyDigest("1234")}

	assert.False(t, h.Verify("1234", s))
}

func TestNew_InvalidCostFallsBack(t *testing.T) {
	h := New(99)
	s, err := h.Hash("1234")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(s.Digest))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestLegacyDigest_KnownVector(t *testing.T) {
	// sha256("1234") in lowercase hex.
	assert.Equal(t,
		"03ac674216f3e15c761ee1a5e255f067953623c8b388b4459e13f978d7c846f4",
		LegacyDigest("1234"))
}
