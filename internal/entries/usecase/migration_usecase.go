package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	cryptoService "github.com/Coops0/jrnlapp/internal/crypto/service"
	"github.com/Coops0/jrnlapp/internal/database"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	entriesService "github.com/Coops0/jrnlapp/internal/entries/service"
)

type migrationUseCase struct {
	txManager  database.TxManager
	activeRepo ActiveEntryRepository
	entryRepo  EntryRepository
	cipher     entriesService.EntryCipher
	pool       *cryptoService.WorkerPool
	logger     *slog.Logger
}

// NewMigrationUseCase creates the migration transaction runner.
func NewMigrationUseCase(
	txManager database.TxManager,
	activeRepo ActiveEntryRepository,
	entryRepo EntryRepository,
	cipher entriesService.EntryCipher,
	pool *cryptoService.WorkerPool,
	logger *slog.Logger,
) MigrationUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &migrationUseCase{
		txManager:  txManager,
		activeRepo: activeRepo,
		entryRepo:  entryRepo,
		cipher:     cipher,
		pool:       pool,
		logger:     logger,
	}
}

func (m *migrationUseCase) Migrate(ctx context.Context, selector Selector) (int, error) {
	var migrated int

	err := m.txManager.WithTx(ctx, func(txCtx context.Context) error {
		claimed, err := m.activeRepo.ClaimExpired(txCtx, selector.Before, selector.Author)
		if err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		encrypted, err := m.encrypt(txCtx, claimed)
		if err != nil {
			return err
		}

		if err := m.persist(txCtx, encrypted); err != nil {
			return err
		}

		migrated = len(encrypted)
		return nil
	})
	if err != nil {
		return 0, err
	}

	if migrated > 0 {
		attrs := []any{slog.Int("count", migrated)}
		if selector.Author != nil {
			attrs = append(attrs, slog.String("author", selector.Author.String()))
		}
		m.logger.Info("migrated expired entries", attrs...)
	}

	return migrated, nil
}

func (m *migrationUseCase) MigrateWithLocal(
	ctx context.Context,
	author uuid.UUID,
	before time.Time,
	locals []*entriesDomain.ActiveEntry,
) (int, error) {
	var migrated int

	err := m.txManager.WithTx(ctx, func(txCtx context.Context) error {
		claimed, err := m.activeRepo.ClaimExpired(txCtx, before, &author)
		if err != nil {
			return err
		}

		// Entries the server still holds win over the client's copy of the same
		// day. That includes unexpired rows: an author whose timezone changed
		// can have an active row for a date the client already considers past.
		remaining, err := m.activeRepo.DatesByAuthor(txCtx, author)
		if err != nil {
			return err
		}

		held := make(map[civil.Date]struct{}, len(claimed)+len(remaining))
		for _, entry := range claimed {
			held[entry.Date] = struct{}{}
		}
		for _, date := range remaining {
			held[date] = struct{}{}
		}

		pending := make([]*entriesDomain.ActiveEntry, 0, len(locals))
		for _, local := range locals {
			if _, ok := held[local.Date]; ok {
				continue
			}
			pending = append(pending, local)
		}

		all := make([]*entriesDomain.ActiveEntry, 0, len(claimed)+len(pending))
		all = append(all, claimed...)
		all = append(all, pending...)
		if len(all) == 0 {
			return nil
		}

		encrypted, err := m.encrypt(txCtx, all)
		if err != nil {
			return err
		}

		if err := m.persist(txCtx, encrypted[:len(claimed)]); err != nil {
			return err
		}

		created := 0
		for _, entry := range encrypted[len(claimed):] {
			ok, err := m.entryRepo.CreateIfAbsent(txCtx, entry)
			if err != nil {
				return fmt.Errorf("%w: entry %s: %v", entriesDomain.ErrPersistFailed, entry.ID, err)
			}
			if ok {
				created++
			}
		}

		migrated = len(claimed) + created
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.logger.Info("imported local entries",
		slog.String("author", author.String()),
		slog.Int("submitted", len(locals)),
		slog.Int("migrated", migrated),
	)

	return migrated, nil
}

// encrypt seals every entry on the worker pool. Any failure fails the batch.
func (m *migrationUseCase) encrypt(
	ctx context.Context,
	entries []*entriesDomain.ActiveEntry,
) ([]*entriesDomain.EncryptedEntry, error) {
	encrypted, err := cryptoService.Map(ctx, m.pool, entries, m.cipher.Encrypt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entriesDomain.ErrEncryptionFailed, err)
	}
	return encrypted, nil
}

func (m *migrationUseCase) persist(ctx context.Context, entries []*entriesDomain.EncryptedEntry) error {
	for _, entry := range entries {
		if err := m.entryRepo.Create(ctx, entry); err != nil {
			return fmt.Errorf("%w: entry %s: %v", entriesDomain.ErrPersistFailed, entry.ID, err)
		}
	}
	return nil
}
