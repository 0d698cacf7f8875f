package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a new ULID string. Used to tag verification claims so only
// the holder can release or complete them.
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
