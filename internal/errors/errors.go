// Package errors holds the sentinels that cross package boundaries. Use cases
// return them wrapped with context; httputil maps them onto status codes, so
// storage and crypto failures never leak into a response.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrConflict is a uniqueness violation, such as a second encrypted entry for one day.
	ErrConflict = errors.New("conflict")

	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized means the request carries no verifiable author.
	ErrUnauthorized = errors.New("unauthorized")

	ErrForbidden = errors.New("forbidden")
)

func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message and keeps it matchable. A nil err stays nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
