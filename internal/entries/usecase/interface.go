// Package usecase implements the entry lifecycle: moving expired active entries
// into encrypted storage, the background sweeper that drives it, and the read
// and write paths used by the HTTP handlers.
package usecase

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

// ActiveEntryRepository defines persistence for plaintext entries that are still editable.
type ActiveEntryRepository interface {
	Upsert(ctx context.Context, entry *entriesDomain.ActiveEntry) (*entriesDomain.ActiveEntry, error)
	GetByAuthorAndDate(ctx context.Context, author uuid.UUID, date civil.Date) (*entriesDomain.ActiveEntry, error)
	// ClaimExpired removes and returns expired non-ephemeral entries. It must
	// run inside a transaction so a rollback puts the rows back.
	ClaimExpired(ctx context.Context, before time.Time, author *uuid.UUID) ([]*entriesDomain.ActiveEntry, error)
	PurgeEphemeral(ctx context.Context, before time.Time) (int64, error)
	DatesByAuthor(ctx context.Context, author uuid.UUID) ([]civil.Date, error)
}

// EntryRepository defines persistence for encrypted entries.
type EntryRepository interface {
	Create(ctx context.Context, entry *entriesDomain.EncryptedEntry) error
	CreateIfAbsent(ctx context.Context, entry *entriesDomain.EncryptedEntry) (bool, error)
	ExistsForDate(ctx context.Context, author uuid.UUID, date civil.Date) (bool, error)
	GetByAuthorAndID(ctx context.Context, author, id uuid.UUID) (*entriesDomain.EncryptedEntry, error)
	ListSummaries(
		ctx context.Context,
		author uuid.UUID,
		cursor entriesDomain.Cursor,
		limit int,
	) ([]*entriesDomain.EntrySummary, error)
	Average(ctx context.Context, author uuid.UUID) (*float64, error)
}

// Selector picks which active entries a migration claims.
type Selector struct {
	// Before is compared against entry expiry; entries expiring strictly earlier are claimed.
	Before time.Time
	// Author limits the claim to one author. Nil claims across all authors.
	Author *uuid.UUID
}

// MigrationUseCase moves expired active entries into encrypted storage atomically.
type MigrationUseCase interface {
	// Migrate claims, encrypts and stores every selected entry in one
	// transaction and returns how many were moved. On any failure nothing changes.
	Migrate(ctx context.Context, selector Selector) (int, error)
	// MigrateWithLocal runs Migrate for one author and, in the same transaction,
	// stores locals whose date the server does not already hold as an active
	// or encrypted entry.
	MigrateWithLocal(
		ctx context.Context,
		author uuid.UUID,
		before time.Time,
		locals []*entriesDomain.ActiveEntry,
	) (int, error)
}

// SweeperUseCase periodically migrates expired entries for every author.
type SweeperUseCase interface {
	Start(ctx context.Context) error
	Sweep(ctx context.Context) error
}

// EntryUseCase is the author-facing entry API.
type EntryUseCase interface {
	ListHistory(
		ctx context.Context,
		author entriesDomain.Author,
		cursor *entriesDomain.Cursor,
		limit int,
	) (*entriesDomain.EntryPage, error)
	// Get returns a decrypted entry, or nil when the author has no entry with that id.
	Get(ctx context.Context, author entriesDomain.Author, id uuid.UUID) (*entriesDomain.DecryptedEntry, error)
	GetToday(ctx context.Context, author entriesDomain.Author) (*entriesDomain.ActiveEntry, error)
	UpsertToday(ctx context.Context, author entriesDomain.Author, input UpsertInput) (*entriesDomain.ActiveEntry, error)
	ImportLocal(ctx context.Context, author entriesDomain.Author, locals []*entriesDomain.LocalEntry) (int, error)
	Average(ctx context.Context, author entriesDomain.Author) (*float64, error)
}

// UpsertInput is the editable part of today's entry.
type UpsertInput struct {
	EmotionScale float32
	Text         *string
	Ephemeral    bool
}
