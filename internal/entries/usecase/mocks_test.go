package usecase

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

// MockTxManager runs fn directly unless WithTx is stubbed to fail.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Get(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockActiveEntryRepository struct {
	mock.Mock
}

func (m *MockActiveEntryRepository) Upsert(
	ctx context.Context,
	entry *entriesDomain.ActiveEntry,
) (*entriesDomain.ActiveEntry, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.ActiveEntry), args.Error(1)
}

func (m *MockActiveEntryRepository) GetByAuthorAndDate(
	ctx context.Context,
	author uuid.UUID,
	date civil.Date,
) (*entriesDomain.ActiveEntry, error) {
	args := m.Called(ctx, author, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.ActiveEntry), args.Error(1)
}

func (m *MockActiveEntryRepository) ClaimExpired(
	ctx context.Context,
	before time.Time,
	author *uuid.UUID,
) ([]*entriesDomain.ActiveEntry, error) {
	args := m.Called(ctx, before, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entriesDomain.ActiveEntry), args.Error(1)
}

func (m *MockActiveEntryRepository) PurgeEphemeral(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockActiveEntryRepository) DatesByAuthor(ctx context.Context, author uuid.UUID) ([]civil.Date, error) {
	args := m.Called(ctx, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]civil.Date), args.Error(1)
}

type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) Create(ctx context.Context, entry *entriesDomain.EncryptedEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockEntryRepository) CreateIfAbsent(
	ctx context.Context,
	entry *entriesDomain.EncryptedEntry,
) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntryRepository) ExistsForDate(ctx context.Context, author uuid.UUID, date civil.Date) (bool, error) {
	args := m.Called(ctx, author, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockEntryRepository) GetByAuthorAndID(
	ctx context.Context,
	author, id uuid.UUID,
) (*entriesDomain.EncryptedEntry, error) {
	args := m.Called(ctx, author, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.EncryptedEntry), args.Error(1)
}

func (m *MockEntryRepository) ListSummaries(
	ctx context.Context,
	author uuid.UUID,
	cursor entriesDomain.Cursor,
	limit int,
) ([]*entriesDomain.EntrySummary, error) {
	args := m.Called(ctx, author, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entriesDomain.EntrySummary), args.Error(1)
}

func (m *MockEntryRepository) Average(ctx context.Context, author uuid.UUID) (*float64, error) {
	args := m.Called(ctx, author)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*float64), args.Error(1)
}

type MockMigrationUseCase struct {
	mock.Mock
}

func (m *MockMigrationUseCase) Migrate(ctx context.Context, selector Selector) (int, error) {
	args := m.Called(ctx, selector)
	return args.Int(0), args.Error(1)
}

func (m *MockMigrationUseCase) MigrateWithLocal(
	ctx context.Context,
	author uuid.UUID,
	before time.Time,
	locals []*entriesDomain.ActiveEntry,
) (int, error) {
	args := m.Called(ctx, author, before, locals)
	return args.Int(0), args.Error(1)
}

type MockEntryCipher struct {
	mock.Mock
}

func (m *MockEntryCipher) Encrypt(entry *entriesDomain.ActiveEntry) (*entriesDomain.EncryptedEntry, error) {
	args := m.Called(entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.EncryptedEntry), args.Error(1)
}

func (m *MockEntryCipher) Decrypt(entry *entriesDomain.EncryptedEntry) (*entriesDomain.DecryptedEntry, error) {
	args := m.Called(entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entriesDomain.DecryptedEntry), args.Error(1)
}

type MockBusinessMetrics struct {
	mock.Mock
}

func (m *MockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *MockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func (m *MockBusinessMetrics) RecordEntriesMigrated(ctx context.Context, trigger string, count int) {
	m.Called(ctx, trigger, count)
}
