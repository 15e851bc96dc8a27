package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/Coops0/jrnlapp/internal/crypto/domain"
	cryptoService "github.com/Coops0/jrnlapp/internal/crypto/service"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	entriesService "github.com/Coops0/jrnlapp/internal/entries/service"
)

var testNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestCipher(t *testing.T) entriesService.EntryCipher {
	t.Helper()
	raw := make([]byte, cryptoDomain.KeySize)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	masterKey, err := cryptoDomain.NewMasterKey(raw)
	require.NoError(t, err)
	t.Cleanup(masterKey.Close)

	envelope := cryptoService.NewEnvelopeCipher(cryptoService.NewAEADManager(), cryptoDomain.AESGCM)
	return entriesService.NewEntryCipher(masterKey, envelope)
}

func strPtr(s string) *string { return &s }

func day(y int, m time.Month, d int) civil.Date {
	return civil.Date{Year: y, Month: m, Day: d}
}

func activeFor(author uuid.UUID, date civil.Date, text string) *entriesDomain.ActiveEntry {
	return &entriesDomain.ActiveEntry{
		ID:           uuid.Must(uuid.NewV7()),
		Author:       author,
		Date:         date,
		EmotionScale: 5,
		Text:         strPtr(text),
		Expiry:       entriesDomain.ExpiryAt(date, time.UTC),
	}
}

// assertRestored checks that a rolled back migration left every active row as it was.
func assertRestored(t *testing.T, want, got map[uuid.UUID]entriesDomain.ActiveEntry) {
	t.Helper()
	require.Len(t, got, len(want))
	for id, original := range want {
		restored, ok := got[id]
		require.True(t, ok, "active entry %s was not restored", id)
		assert.Equal(t, original.ID, restored.ID)
		assert.Equal(t, original.Author, restored.Author)
		assert.Equal(t, original.Date, restored.Date)
		assert.Equal(t, original.Expiry, restored.Expiry)
		assert.Equal(t, original.Text, restored.Text)
		assert.Equal(t, original.EmotionScale, restored.EmotionScale)
		assert.Equal(t, original.Ephemeral, restored.Ephemeral)
	}
}

func newStoreMigration(t *testing.T, store *memoryStore) (MigrationUseCase, entriesService.EntryCipher) {
	t.Helper()
	cipher := newTestCipher(t)
	return NewMigrationUseCase(store, store, store, cipher, cryptoService.NewWorkerPool(4), nil), cipher
}

func TestMigrationUseCase_Migrate_NothingExpired(t *testing.T) {
	store := newMemoryStore()
	store.put(activeFor(uuid.New(), day(2024, 3, 10), "today"))
	migration, _ := newStoreMigration(t, store)

	for range 2 {
		count, err := migration.Migrate(context.Background(), Selector{Before: testNow})
		require.NoError(t, err)
		assert.Zero(t, count)
	}
	assert.Equal(t, 1, store.activeCount())
	assert.Zero(t, store.encryptedCount())
}

func TestMigrationUseCase_Migrate_MovesExpiredEntries(t *testing.T) {
	store := newMemoryStore()
	alice, bob := uuid.New(), uuid.New()

	expired := []*entriesDomain.ActiveEntry{
		activeFor(alice, day(2024, 3, 8), "alice eighth"),
		activeFor(alice, day(2024, 3, 9), "alice ninth"),
		activeFor(bob, day(2024, 3, 9), "bob ninth"),
	}
	for _, entry := range expired {
		store.put(entry)
	}

	draft := activeFor(bob, day(2024, 3, 8), "draft")
	draft.Ephemeral = true
	store.put(draft)
	store.put(activeFor(alice, day(2024, 3, 10), "still today"))

	migration, cipher := newStoreMigration(t, store)

	count, err := migration.Migrate(context.Background(), Selector{Before: testNow})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 2, store.activeCount())
	assert.Equal(t, 3, store.encryptedCount())

	for _, entry := range expired {
		stored := store.encrypted(entry.ID)
		require.NotNil(t, stored, "entry %s was not migrated", entry.ID)
		assert.Equal(t, entry.Author, stored.Author)
		assert.Equal(t, entry.Date, stored.Date)

		decrypted, err := cipher.Decrypt(stored)
		require.NoError(t, err)
		assert.Equal(t, entry.Text, decrypted.Text)
	}

	// Ephemeral entries stay put even once expired.
	_, err = store.GetByAuthorAndDate(context.Background(), bob, draft.Date)
	assert.NoError(t, err)
}

func TestMigrationUseCase_Migrate_ScopedToAuthor(t *testing.T) {
	store := newMemoryStore()
	alice, bob := uuid.New(), uuid.New()
	store.put(activeFor(alice, day(2024, 3, 9), "alice"))
	store.put(activeFor(bob, day(2024, 3, 9), "bob"))

	migration, _ := newStoreMigration(t, store)

	count, err := migration.Migrate(context.Background(), Selector{Before: testNow, Author: &alice})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = store.GetByAuthorAndDate(context.Background(), bob, day(2024, 3, 9))
	assert.NoError(t, err)
	_, err = store.GetByAuthorAndDate(context.Background(), alice, day(2024, 3, 9))
	assert.ErrorIs(t, err, entriesDomain.ErrEntryNotFound)
}

func TestMigrationUseCase_Migrate_EncryptionFailureRollsBack(t *testing.T) {
	for _, size := range []int{1, 2, 5, 20} {
		t.Run(fmt.Sprintf("batch of %d", size), func(t *testing.T) {
			store := newMemoryStore()
			store.leakEphemeral = true
			author := uuid.New()

			start := day(2024, 1, 1)
			for i := range size - 1 {
				store.put(activeFor(author, start.AddDays(i), "fine"))
			}
			poisoned := activeFor(author, start.AddDays(size-1), "draft")
			poisoned.Ephemeral = true
			store.put(poisoned)

			migration, _ := newStoreMigration(t, store)
			before := store.activeRows()

			count, err := migration.Migrate(context.Background(), Selector{Before: testNow})
			assert.ErrorIs(t, err, entriesDomain.ErrEncryptionFailed)
			assert.Zero(t, count)
			assertRestored(t, before, store.activeRows())
			assert.Zero(t, store.encryptedCount())
		})
	}
}

func TestMigrationUseCase_Migrate_PersistFailureRollsBack(t *testing.T) {
	store := newMemoryStore()
	author := uuid.New()
	for i := range 4 {
		store.put(activeFor(author, day(2024, 3, 1).AddDays(i), "entry"))
	}

	writes := 0
	store.failCreate = func(*entriesDomain.EncryptedEntry) error {
		writes++
		if writes == 3 {
			return errors.New("disk full")
		}
		return nil
	}

	migration, _ := newStoreMigration(t, store)
	before := store.activeRows()

	count, err := migration.Migrate(context.Background(), Selector{Before: testNow})
	assert.ErrorIs(t, err, entriesDomain.ErrPersistFailed)
	assert.Zero(t, count)
	assertRestored(t, before, store.activeRows())
	assert.Zero(t, store.encryptedCount())
}

func TestMigrationUseCase_Migrate_ConcurrentRunsMoveEachEntryOnce(t *testing.T) {
	store := newMemoryStore()
	authors := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	total := 0
	for _, author := range authors {
		for i := range 20 {
			store.put(activeFor(author, day(2024, 1, 1).AddDays(i), "entry"))
			total++
		}
	}

	migration, _ := newStoreMigration(t, store)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		migrated int
	)
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			selector := Selector{Before: testNow}
			if i%2 == 1 {
				selector.Author = &authors[i%len(authors)]
			}
			count, err := migration.Migrate(context.Background(), selector)
			assert.NoError(t, err)
			mu.Lock()
			migrated += count
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, total, migrated)
	assert.Equal(t, total, store.encryptedCount())
	assert.Zero(t, store.activeCount())
}

func TestMigrationUseCase_MigrateWithLocal(t *testing.T) {
	store := newMemoryStore()
	author := uuid.New()

	held := activeFor(author, day(2024, 3, 8), "server copy")
	store.put(held)

	existing := &entriesDomain.EncryptedEntry{ID: uuid.New(), Author: author, Date: day(2024, 3, 7)}
	require.NoError(t, store.Create(context.Background(), existing))

	locals := []*entriesDomain.ActiveEntry{
		activeFor(author, day(2024, 3, 8), "client copy of a held day"),
		activeFor(author, day(2024, 3, 7), "client copy of an encrypted day"),
		activeFor(author, day(2024, 3, 6), "new from the client"),
	}

	migration, cipher := newStoreMigration(t, store)

	count, err := migration.MigrateWithLocal(context.Background(), author, testNow, locals)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 3, store.encryptedCount())
	assert.Zero(t, store.activeCount())

	decrypted, err := cipher.Decrypt(store.encrypted(held.ID))
	require.NoError(t, err)
	assert.Equal(t, "server copy", *decrypted.Text)

	assert.Nil(t, store.encrypted(locals[0].ID))
	assert.Nil(t, store.encrypted(locals[1].ID))
	require.NotNil(t, store.encrypted(locals[2].ID))
}

func TestMigrationUseCase_Migrate_ClaimError(t *testing.T) {
	txManager := &MockTxManager{}
	activeRepo := &MockActiveEntryRepository{}
	entryRepo := &MockEntryRepository{}
	cipher := &MockEntryCipher{}

	txManager.On("WithTx", mock.Anything, mock.Anything).Return(nil)
	activeRepo.On("ClaimExpired", mock.Anything, testNow, (*uuid.UUID)(nil)).Return(nil, assert.AnError)

	migration := NewMigrationUseCase(txManager, activeRepo, entryRepo, cipher, cryptoService.NewWorkerPool(1), nil)

	count, err := migration.Migrate(context.Background(), Selector{Before: testNow})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, count)
	cipher.AssertNotCalled(t, "Encrypt", mock.Anything)
	entryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestMigrationUseCase_Migrate_TxError(t *testing.T) {
	txManager := &MockTxManager{}
	txManager.On("WithTx", mock.Anything, mock.Anything).Return(assert.AnError)

	migration := NewMigrationUseCase(
		txManager,
		&MockActiveEntryRepository{},
		&MockEntryRepository{},
		&MockEntryCipher{},
		cryptoService.NewWorkerPool(1),
		nil,
	)

	count, err := migration.Migrate(context.Background(), Selector{Before: testNow})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Zero(t, count)
}
