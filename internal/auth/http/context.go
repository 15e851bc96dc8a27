// Package http authenticates authors on the entry API and rate limits them.
package http

import (
	"context"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

type authorKey struct{}

// WithAuthor stores the authenticated author in the context.
func WithAuthor(ctx context.Context, author entriesDomain.Author) context.Context {
	return context.WithValue(ctx, authorKey{}, author)
}

// GetAuthor returns the author stored by AuthenticationMiddleware.
func GetAuthor(ctx context.Context) (entriesDomain.Author, bool) {
	author, ok := ctx.Value(authorKey{}).(entriesDomain.Author)
	return author, ok
}
