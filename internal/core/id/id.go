// Package id defines the identifier type shared by catalogs, documents and
// register rows.
package id

import "github.com/google/uuid"

// ID aliases uuid.UUID so repositories and DTOs can treat identifiers as
// plain UUIDs without conversion.
type ID = uuid.UUID

// New returns a time-ordered UUIDv7. The embedded timestamp keeps inserts
// append-mostly in the primary key index.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse validates and converts an identifier string.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse is Parse that panics. For fixtures and tests only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil is the zero identifier.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether v is the zero identifier.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
