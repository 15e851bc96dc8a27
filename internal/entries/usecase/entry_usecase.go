package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	cryptoService "github.com/Coops0/jrnlapp/internal/crypto/service"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	entriesService "github.com/Coops0/jrnlapp/internal/entries/service"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	DefaultLocalImportMaxEntries = 365
)

// EntryConfig holds entry use case limits.
type EntryConfig struct {
	LocalImportMaxEntries int
}

type entryUseCase struct {
	config     EntryConfig
	migration  MigrationUseCase
	activeRepo ActiveEntryRepository
	entryRepo  EntryRepository
	cipher     entriesService.EntryCipher
	pool       *cryptoService.WorkerPool
	logger     *slog.Logger
	now        func() time.Time
}

// NewEntryUseCase creates the author-facing entry use case.
func NewEntryUseCase(
	config EntryConfig,
	migration MigrationUseCase,
	activeRepo ActiveEntryRepository,
	entryRepo EntryRepository,
	cipher entriesService.EntryCipher,
	pool *cryptoService.WorkerPool,
	logger *slog.Logger,
) EntryUseCase {
	if config.LocalImportMaxEntries <= 0 {
		config.LocalImportMaxEntries = DefaultLocalImportMaxEntries
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &entryUseCase{
		config:     config,
		migration:  migration,
		activeRepo: activeRepo,
		entryRepo:  entryRepo,
		cipher:     cipher,
		pool:       pool,
		logger:     logger,
		now:        time.Now,
	}
}

// ListHistory first migrates the author's own expired entries so yesterday's
// entry shows up without waiting for the sweeper, then pages the encrypted store.
func (e *entryUseCase) ListHistory(
	ctx context.Context,
	author entriesDomain.Author,
	cursor *entriesDomain.Cursor,
	limit int,
) (*entriesDomain.EntryPage, error) {
	if _, err := e.migration.Migrate(ctx, Selector{Before: e.now().UTC(), Author: &author.ID}); err != nil {
		return nil, err
	}

	limit = clampLimit(limit)

	start := entriesDomain.StartCursor()
	if cursor != nil {
		start = *cursor
	}

	summaries, err := e.entryRepo.ListSummaries(ctx, author.ID, start, limit+1)
	if err != nil {
		return nil, err
	}

	page := &entriesDomain.EntryPage{Items: summaries}
	if len(summaries) > limit {
		page.Items = summaries[:limit]
		page.HasMore = true
		last := page.Items[limit-1]
		page.NextCursor = &entriesDomain.Cursor{Date: last.Date, ID: last.ID}
	}

	return page, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

func (e *entryUseCase) Get(
	ctx context.Context,
	author entriesDomain.Author,
	id uuid.UUID,
) (*entriesDomain.DecryptedEntry, error) {
	encrypted, err := e.entryRepo.GetByAuthorAndID(ctx, author.ID, id)
	if err != nil {
		if errors.Is(err, entriesDomain.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var decrypted *entriesDomain.DecryptedEntry
	err = e.pool.Do(ctx, func() error {
		var err error
		decrypted, err = e.cipher.Decrypt(encrypted)
		return err
	})
	if err != nil {
		if errors.Is(err, entriesDomain.ErrDecryptionFailed) {
			e.logger.Error("stored entry failed to decrypt",
				slog.String("entry_id", id.String()),
				slog.String("author", author.ID.String()),
				slog.Any("error", err),
			)
		}
		return nil, err
	}

	return decrypted, nil
}

func (e *entryUseCase) GetToday(
	ctx context.Context,
	author entriesDomain.Author,
) (*entriesDomain.ActiveEntry, error) {
	entry, err := e.activeRepo.GetByAuthorAndDate(ctx, author.ID, author.Today(e.now()))
	if err != nil {
		if errors.Is(err, entriesDomain.ErrEntryNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return entry, nil
}

func (e *entryUseCase) UpsertToday(
	ctx context.Context,
	author entriesDomain.Author,
	input UpsertInput,
) (*entriesDomain.ActiveEntry, error) {
	today := author.Today(e.now())

	// After a timezone change today's date can already be encrypted. A second
	// active row for it could never migrate.
	sealed, err := e.entryRepo.ExistsForDate(ctx, author.ID, today)
	if err != nil {
		return nil, err
	}
	if sealed {
		return nil, entriesDomain.ErrEntryAlreadyEncrypted
	}

	return e.activeRepo.Upsert(ctx, &entriesDomain.ActiveEntry{
		ID:           uuid.Must(uuid.NewV7()),
		Author:       author.ID,
		Date:         today,
		EmotionScale: input.EmotionScale,
		Text:         input.Text,
		Expiry:       author.ExpiryFor(today),
		Ephemeral:    input.Ephemeral,
	})
}

// ImportLocal stores an offline client's past entries. The size cap applies
// to the submitted batch before any filtering. Entries dated today or later
// are dropped, and only the first entry per date is kept.
func (e *entryUseCase) ImportLocal(
	ctx context.Context,
	author entriesDomain.Author,
	locals []*entriesDomain.LocalEntry,
) (int, error) {
	if len(locals) > e.config.LocalImportMaxEntries {
		return 0, entriesDomain.ErrTooManyEntries
	}

	now := e.now()
	today := author.Today(now)

	seen := make(map[civil.Date]struct{}, len(locals))
	entries := make([]*entriesDomain.ActiveEntry, 0, len(locals))
	for _, local := range locals {
		if !local.Date.Before(today) {
			continue
		}
		if _, ok := seen[local.Date]; ok {
			continue
		}
		seen[local.Date] = struct{}{}

		entries = append(entries, &entriesDomain.ActiveEntry{
			ID:           uuid.Must(uuid.NewV7()),
			Author:       author.ID,
			Date:         local.Date,
			EmotionScale: local.EmotionScale,
			Text:         local.Text,
			Expiry:       author.ExpiryFor(local.Date),
		})
	}

	return e.migration.MigrateWithLocal(ctx, author.ID, now.UTC(), entries)
}

func (e *entryUseCase) Average(ctx context.Context, author entriesDomain.Author) (*float64, error) {
	return e.entryRepo.Average(ctx, author.ID)
}
