package usecase

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

type memTxKey struct{}

// memoryStore is an in-memory stand-in for both entry tables and the
// transaction manager. Transactions are serialised and a failed one restores
// the snapshot taken when it began.
type memoryStore struct {
	mu      sync.Mutex
	active  map[uuid.UUID]*entriesDomain.ActiveEntry
	entries map[uuid.UUID]*entriesDomain.EncryptedEntry

	// leakEphemeral makes ClaimExpired return ephemeral rows too.
	leakEphemeral bool
	// failCreate, when set, is consulted before every encrypted insert.
	failCreate func(entry *entriesDomain.EncryptedEntry) error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		active:  make(map[uuid.UUID]*entriesDomain.ActiveEntry),
		entries: make(map[uuid.UUID]*entriesDomain.EncryptedEntry),
	}
}

func (s *memoryStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	activeSnapshot := maps.Clone(s.active)
	entriesSnapshot := maps.Clone(s.entries)

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.active = activeSnapshot
		s.entries = entriesSnapshot
		return err
	}
	return nil
}

func (s *memoryStore) locked(ctx context.Context, fn func()) {
	if ctx.Value(memTxKey{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	fn()
}

func (s *memoryStore) put(entry *entriesDomain.ActiveEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	s.active[entry.ID] = &stored
}

func (s *memoryStore) activeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// activeRows copies every active row, keyed by id.
func (s *memoryStore) activeRows() map[uuid.UUID]entriesDomain.ActiveEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make(map[uuid.UUID]entriesDomain.ActiveEntry, len(s.active))
	for id, entry := range s.active {
		rows[id] = *entry
	}
	return rows
}

func (s *memoryStore) encryptedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *memoryStore) encrypted(id uuid.UUID) *entriesDomain.EncryptedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[id]
}

func (s *memoryStore) Upsert(
	ctx context.Context,
	entry *entriesDomain.ActiveEntry,
) (*entriesDomain.ActiveEntry, error) {
	var saved entriesDomain.ActiveEntry
	s.locked(ctx, func() {
		for _, existing := range s.active {
			if existing.Author == entry.Author && existing.Date == entry.Date {
				saved = *existing
				saved.EmotionScale = entry.EmotionScale
				saved.Text = entry.Text
				saved.Ephemeral = entry.Ephemeral
				s.active[saved.ID] = &saved
				return
			}
		}
		saved = *entry
		s.active[saved.ID] = &saved
	})
	out := saved
	return &out, nil
}

func (s *memoryStore) GetByAuthorAndDate(
	ctx context.Context,
	author uuid.UUID,
	date civil.Date,
) (*entriesDomain.ActiveEntry, error) {
	var found *entriesDomain.ActiveEntry
	s.locked(ctx, func() {
		for _, existing := range s.active {
			if existing.Author == author && existing.Date == date {
				copied := *existing
				found = &copied
				return
			}
		}
	})
	if found == nil {
		return nil, entriesDomain.ErrEntryNotFound
	}
	return found, nil
}

func (s *memoryStore) ClaimExpired(
	ctx context.Context,
	before time.Time,
	author *uuid.UUID,
) ([]*entriesDomain.ActiveEntry, error) {
	var claimed []*entriesDomain.ActiveEntry
	s.locked(ctx, func() {
		for id, entry := range s.active {
			if !entry.Expiry.Before(before) {
				continue
			}
			if entry.Ephemeral && !s.leakEphemeral {
				continue
			}
			if author != nil && entry.Author != *author {
				continue
			}
			claimed = append(claimed, entry)
			delete(s.active, id)
		}
	})
	slices.SortFunc(claimed, func(a, b *entriesDomain.ActiveEntry) int {
		return a.Date.Compare(b.Date)
	})
	return claimed, nil
}

func (s *memoryStore) DatesByAuthor(ctx context.Context, author uuid.UUID) ([]civil.Date, error) {
	var dates []civil.Date
	s.locked(ctx, func() {
		for _, entry := range s.active {
			if entry.Author == author {
				dates = append(dates, entry.Date)
			}
		}
	})
	return dates, nil
}

func (s *memoryStore) PurgeEphemeral(ctx context.Context, before time.Time) (int64, error) {
	var purged int64
	s.locked(ctx, func() {
		for id, entry := range s.active {
			if entry.Ephemeral && entry.Expiry.Before(before) {
				delete(s.active, id)
				purged++
			}
		}
	})
	return purged, nil
}

func (s *memoryStore) hasEncrypted(author uuid.UUID, date civil.Date) bool {
	for _, existing := range s.entries {
		if existing.Author == author && existing.Date == date {
			return true
		}
	}
	return false
}

func (s *memoryStore) Create(ctx context.Context, entry *entriesDomain.EncryptedEntry) error {
	var err error
	s.locked(ctx, func() {
		if s.failCreate != nil {
			if err = s.failCreate(entry); err != nil {
				return
			}
		}
		if s.hasEncrypted(entry.Author, entry.Date) {
			err = entriesDomain.ErrEntryAlreadyEncrypted
			return
		}
		s.entries[entry.ID] = entry
	})
	return err
}

func (s *memoryStore) CreateIfAbsent(ctx context.Context, entry *entriesDomain.EncryptedEntry) (bool, error) {
	var created bool
	s.locked(ctx, func() {
		if s.hasEncrypted(entry.Author, entry.Date) {
			return
		}
		s.entries[entry.ID] = entry
		created = true
	})
	return created, nil
}

func (s *memoryStore) ExistsForDate(ctx context.Context, author uuid.UUID, date civil.Date) (bool, error) {
	var exists bool
	s.locked(ctx, func() {
		exists = s.hasEncrypted(author, date)
	})
	return exists, nil
}

func (s *memoryStore) GetByAuthorAndID(
	ctx context.Context,
	author, id uuid.UUID,
) (*entriesDomain.EncryptedEntry, error) {
	var found *entriesDomain.EncryptedEntry
	s.locked(ctx, func() {
		if entry, ok := s.entries[id]; ok && entry.Author == author {
			found = entry
		}
	})
	if found == nil {
		return nil, entriesDomain.ErrEntryNotFound
	}
	return found, nil
}

func compareKey(aDate civil.Date, aID uuid.UUID, bDate civil.Date, bID uuid.UUID) int {
	if c := aDate.Compare(bDate); c != 0 {
		return c
	}
	return bytes.Compare(aID[:], bID[:])
}

func (s *memoryStore) ListSummaries(
	ctx context.Context,
	author uuid.UUID,
	cursor entriesDomain.Cursor,
	limit int,
) ([]*entriesDomain.EntrySummary, error) {
	var summaries []*entriesDomain.EntrySummary
	s.locked(ctx, func() {
		for _, entry := range s.entries {
			if entry.Author != author || compareKey(entry.Date, entry.ID, cursor.Date, cursor.ID) >= 0 {
				continue
			}
			summaries = append(summaries, &entriesDomain.EntrySummary{
				ID:           entry.ID,
				Date:         entry.Date,
				EmotionScale: entry.EmotionScale,
			})
		}
	})

	slices.SortFunc(summaries, func(a, b *entriesDomain.EntrySummary) int {
		return compareKey(b.Date, b.ID, a.Date, a.ID)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

func (s *memoryStore) Average(ctx context.Context, author uuid.UUID) (*float64, error) {
	var sum float64
	var n int
	s.locked(ctx, func() {
		for _, entry := range s.entries {
			if entry.Author == author {
				sum += float64(entry.EmotionScale)
				n++
			}
		}
	})
	if n == 0 {
		return nil, nil
	}
	avg := sum / float64(n)
	return &avg, nil
}
