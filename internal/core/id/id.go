// Package id generates and parses entity identifiers (UUIDv7).
package id

import (
	"github.com/google/uuid"

	"trackiq/internal/core/apperror"
)

// ID is the identifier type of every entity.
type ID = uuid.UUID

// New generates a time-ordered UUIDv7.
func New() ID {
	v, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return v
}

// Parse converts string to ID.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// ParseField parses a reference id supplied by a client and reports a field
// validation error when it is malformed.
func ParseField(field, s string) (ID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apperror.NewFieldValidation(field, "must be a valid id")
	}
	return v, nil
}

// MustParse panics on malformed input. Use only for constants and tests.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil checks if ID is zero-value.
func IsNil(v ID) bool {
	return v == uuid.Nil
}
