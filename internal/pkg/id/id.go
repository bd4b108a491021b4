package id

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. ULIDs are lexicographically sortable
// by creation time and safe for use as DynamoDB partition keys.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// FloorAt returns the smallest ULID for the given instant (zero entropy).
// Useful as the lower bound of a time-range query over ULID sort keys.
func FloorAt(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), nil).String()
}
