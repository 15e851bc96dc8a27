package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	authService "github.com/Coops0/jrnlapp/internal/auth/service"
	customValidation "github.com/Coops0/jrnlapp/internal/validation"
)

type tokenOutput struct {
	AuthorID  string    `json:"author_id"`
	Timezone  string    `json:"timezone,omitempty"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RunCreateToken issues a bearer token for an author. An empty authorID
// creates a new author id.
func RunCreateToken(
	tokenService authService.TokenService,
	writer io.Writer,
	authorID string,
	timezone string,
	ttl time.Duration,
	format string,
) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive, got %s", ttl)
	}

	if err := validation.Validate(timezone, customValidation.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}

	id := uuid.New()
	if authorID != "" {
		parsed, err := uuid.Parse(authorID)
		if err != nil {
			return fmt.Errorf("invalid author id: %w", err)
		}
		id = parsed
	}

	token, err := tokenService.Issue(id, timezone, ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	out := tokenOutput{
		AuthorID:  id.String(),
		Timezone:  timezone,
		Token:     token,
		ExpiresAt: time.Now().Add(ttl).UTC().Truncate(time.Second),
	}
	return writeOutput(writer, format, out, func(w io.Writer) error {
		_, _ = fmt.Fprintf(w, "Author ID: %s\n", out.AuthorID)
		_, _ = fmt.Fprintf(w, "Expires:   %s\n", out.ExpiresAt.Format(time.RFC3339))
		_, err := fmt.Fprintf(w, "Token:     %s\n", out.Token)
		return err
	})
}
