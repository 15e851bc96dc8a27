// Package domain defines journal entries in their three forms: the mutable
// active entry for the current day, the encrypted entry it becomes once its
// day has ended, and the decrypted projection produced for a single read.
package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// ActiveEntry is an author's in-progress entry for one calendar day.
// At most one exists per (Author, Date); writes upsert it.
type ActiveEntry struct {
	ID           uuid.UUID
	Author       uuid.UUID
	Date         civil.Date
	EmotionScale float32
	Text         *string
	// Expiry is the UTC instant the entry becomes eligible for migration:
	// local midnight, in the author's timezone, of the day after Date.
	Expiry time.Time
	// Ephemeral entries are local drafts. They are never migrated or encrypted.
	Ephemeral bool
}

// EncryptedEntry is a finalised entry. It is written once per (Author, Date)
// and never updated.
type EncryptedEntry struct {
	ID               uuid.UUID
	Author           uuid.UUID
	Date             civil.Date
	EmotionScale     float32
	EncryptedContent []byte
	// ContentKey is the per-entry key wrapped under the master key.
	ContentKey []byte
	// Nonce is shared by the key wrap and the content seal.
	Nonce []byte
}

// DecryptedEntry is the in-memory plaintext view of an EncryptedEntry. Never persisted.
type DecryptedEntry struct {
	ID           uuid.UUID
	Author       uuid.UUID
	Date         civil.Date
	EmotionScale float32
	Text         *string
}

// EntrySummary is a history row without content.
type EntrySummary struct {
	ID           uuid.UUID
	Date         civil.Date
	EmotionScale float32
}

// LocalEntry is a past-dated entry uploaded by an offline client.
type LocalEntry struct {
	Date         civil.Date
	EmotionScale float32
	Text         *string
}

// EntryPage is one page of an author's history, newest first.
type EntryPage struct {
	Items      []*EntrySummary
	NextCursor *Cursor
	HasMore    bool
}
