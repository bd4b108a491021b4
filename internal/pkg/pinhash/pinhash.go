package pinhash

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/td-studios/auth-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Hasher produces and verifies PIN secrets. New and upgraded accounts always
// get the bcrypt scheme; the legacy SHA-256 path exists only so pre-migration
// accounts keep working until their first successful login rewrites the hash.
type Hasher struct {
	cost int
}

// New returns a Hasher with the given bcrypt cost. Costs outside bcrypt's
// valid range fall back to 12, which verifies in tens of milliseconds.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = 12
	}
	return &Hasher{cost: cost}
}

// Hash derives a salted secret from the PIN.
func (h *Hasher) Hash(pin string) (domain.PinSecret, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pin), h.cost)
	if err != nil {
		return domain.PinSecret{}, fmt.Errorf("hash pin: %w", err)
	}
	return domain.PinSecret{Scheme: domain.SchemeBcrypt, Digest: string(b)}, nil
}

// Verify checks the PIN against the stored secret, dispatching on its scheme.
func (h *Hasher) Verify(pin string, secret domain.PinSecret) bool {
	if secret.IsLegacy() {
		return verifyLegacy(pin, secret.Digest)
	}
	return bcrypt.CompareHashAndPassword([]byte(secret.Digest), []byte(pin)) == nil
}

// verifyLegacy recomputes the unsalted SHA-256 digest of the raw PIN bytes and
// compares it to the stored hex digest in constant time.
func verifyLegacy(pin, storedDigest string) bool {
	sum := sha256.Sum256([]byte(pin))
	computed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(storedDigest)) == 1
}

// LegacyDigest returns the hex SHA-256 digest of a PIN. Only used to seed
// pre-migration fixtures in tests and tooling.
func LegacyDigest(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}
