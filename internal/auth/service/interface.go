// Package service issues and verifies the bearer tokens that identify authors.
//
// Login happens elsewhere: whoever signs in the author mints a token with the
// shared secret, carrying the author id as the subject and their IANA timezone.
package service

import (
	"time"

	"github.com/google/uuid"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

// TokenService defines bearer token operations.
type TokenService interface {
	// Issue signs a token for the author that expires after ttl.
	Issue(authorID uuid.UUID, timezone string, ttl time.Duration) (string, error)

	// Verify checks the signature and expiry of token and returns its author.
	// Any failure is reported as ErrInvalidToken.
	Verify(token string) (entriesDomain.Author, error)
}
