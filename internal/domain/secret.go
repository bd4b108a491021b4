package domain

import "regexp"

// Hash schemes for stored PIN secrets.
const (
	SchemeLegacy = "legacy" // unsalted SHA-256 digest, 64 lowercase hex chars
	SchemeBcrypt = "bcrypt" // salted adaptive hash, written for all new accounts
)

// legacyDigestRe matches the exact shape of a pre-migration SHA-256 digest.
var legacyDigestRe = regexp.MustCompile(`^[0-9a-f]{64}$`)

// PinSecret is the tagged stored secret for a user's PIN. Modeling the scheme
// explicitly keeps shape-sniffing out of the verification path: it happens once,
// at record load, and only for rows written before the scheme attribute existed.
type PinSecret struct {
	Scheme string
	Digest string
}

// ParsePinSecret builds a PinSecret from the persisted attributes. Records that
// predate the scheme tag are classified by digest shape.
func ParsePinSecret(digest, scheme string) PinSecret {
	if scheme == "" {
		if legacyDigestRe.MatchString(digest) {
			scheme = SchemeLegacy
		} else {
			scheme = SchemeBcrypt
		}
	}
	return PinSecret{Scheme: scheme, Digest: digest}
}

func (s PinSecret) IsLegacy() bool { return s.Scheme == SchemeLegacy }
