package store

import (
	"regexp"

	"github.com/google/uuid"
)

// identifierPattern matches the bare-identifier grammar required of table
// names and database names: letters, digits, underscore.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// newID allocates a fresh record id when the caller did not supply one.
func newID() string {
	return uuid.NewString()
}
