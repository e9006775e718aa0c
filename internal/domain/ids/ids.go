// Package ids mints and validates the ULID identifiers used for events and
// applications. User accounts use database-generated UUIDs instead.
package ids

import (
	"crypto/rand"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	ulidRegex = regexp.MustCompile(`(?i)^[0-9A-HJKMNP-TV-Z]{26}$`)

	ErrInvalidULID = errors.New("invalid ULID")
)

func NewULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String()
}

func ValidateULID(value string) error {
	if !ulidRegex.MatchString(strings.TrimSpace(value)) {
		return ErrInvalidULID
	}
	return nil
}
