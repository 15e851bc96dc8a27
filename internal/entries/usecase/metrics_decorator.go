package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	"github.com/Coops0/jrnlapp/internal/metrics"
)

const metricsDomain = "entries"

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// entryUseCaseWithMetrics decorates EntryUseCase with metrics instrumentation.
type entryUseCaseWithMetrics struct {
	next    EntryUseCase
	metrics metrics.BusinessMetrics
}

// NewEntryUseCaseWithMetrics wraps an EntryUseCase with metrics recording.
func NewEntryUseCaseWithMetrics(useCase EntryUseCase, m metrics.BusinessMetrics) EntryUseCase {
	return &entryUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (e *entryUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := statusOf(err)
	e.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	e.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

func (e *entryUseCaseWithMetrics) ListHistory(
	ctx context.Context,
	author entriesDomain.Author,
	cursor *entriesDomain.Cursor,
	limit int,
) (*entriesDomain.EntryPage, error) {
	start := time.Now()
	page, err := e.next.ListHistory(ctx, author, cursor, limit)
	e.record(ctx, "entry_list", start, err)
	return page, err
}

func (e *entryUseCaseWithMetrics) Get(
	ctx context.Context,
	author entriesDomain.Author,
	id uuid.UUID,
) (*entriesDomain.DecryptedEntry, error) {
	start := time.Now()
	entry, err := e.next.Get(ctx, author, id)
	e.record(ctx, "entry_get", start, err)
	return entry, err
}

func (e *entryUseCaseWithMetrics) GetToday(
	ctx context.Context,
	author entriesDomain.Author,
) (*entriesDomain.ActiveEntry, error) {
	start := time.Now()
	entry, err := e.next.GetToday(ctx, author)
	e.record(ctx, "entry_get_today", start, err)
	return entry, err
}

func (e *entryUseCaseWithMetrics) UpsertToday(
	ctx context.Context,
	author entriesDomain.Author,
	input UpsertInput,
) (*entriesDomain.ActiveEntry, error) {
	start := time.Now()
	entry, err := e.next.UpsertToday(ctx, author, input)
	e.record(ctx, "entry_upsert_today", start, err)
	return entry, err
}

func (e *entryUseCaseWithMetrics) ImportLocal(
	ctx context.Context,
	author entriesDomain.Author,
	locals []*entriesDomain.LocalEntry,
) (int, error) {
	start := time.Now()
	count, err := e.next.ImportLocal(ctx, author, locals)
	e.record(ctx, "entry_import_local", start, err)
	return count, err
}

func (e *entryUseCaseWithMetrics) Average(ctx context.Context, author entriesDomain.Author) (*float64, error) {
	start := time.Now()
	avg, err := e.next.Average(ctx, author)
	e.record(ctx, "entry_average", start, err)
	return avg, err
}

// migrationUseCaseWithMetrics counts migrated entries by trigger: "sweep" for
// global runs and "request" for author-scoped ones.
type migrationUseCaseWithMetrics struct {
	next    MigrationUseCase
	metrics metrics.BusinessMetrics
}

// NewMigrationUseCaseWithMetrics wraps a MigrationUseCase with metrics recording.
func NewMigrationUseCaseWithMetrics(useCase MigrationUseCase, m metrics.BusinessMetrics) MigrationUseCase {
	return &migrationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (m *migrationUseCaseWithMetrics) Migrate(ctx context.Context, selector Selector) (int, error) {
	trigger := "sweep"
	if selector.Author != nil {
		trigger = "request"
	}

	start := time.Now()
	count, err := m.next.Migrate(ctx, selector)

	status := statusOf(err)
	m.metrics.RecordOperation(ctx, metricsDomain, "migrate_"+trigger, status)
	m.metrics.RecordDuration(ctx, metricsDomain, "migrate_"+trigger, time.Since(start), status)
	m.metrics.RecordEntriesMigrated(ctx, trigger, count)

	return count, err
}

func (m *migrationUseCaseWithMetrics) MigrateWithLocal(
	ctx context.Context,
	author uuid.UUID,
	before time.Time,
	locals []*entriesDomain.ActiveEntry,
) (int, error) {
	start := time.Now()
	count, err := m.next.MigrateWithLocal(ctx, author, before, locals)

	status := statusOf(err)
	m.metrics.RecordOperation(ctx, metricsDomain, "migrate_local", status)
	m.metrics.RecordDuration(ctx, metricsDomain, "migrate_local", time.Since(start), status)
	m.metrics.RecordEntriesMigrated(ctx, "local", count)

	return count, err
}
