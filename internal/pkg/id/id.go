package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. Notification ids sort by creation time,
// which keeps feed entries and record keys in the same order.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
