package dto

import (
	"time"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

// ActiveEntryResponse is today's editable entry.
type ActiveEntryResponse struct {
	ID           string    `json:"id"`
	Author       string    `json:"author"`
	Date         string    `json:"date"`
	EmotionScale float32   `json:"emotion_scale"`
	Text         *string   `json:"text"`
	Expiry       time.Time `json:"expiry"`
	Ephemeral    bool      `json:"ephemeral"`
}

// MapActiveEntryToResponse returns nil for a nil entry so the body encodes as null.
func MapActiveEntryToResponse(entry *entriesDomain.ActiveEntry) *ActiveEntryResponse {
	if entry == nil {
		return nil
	}
	return &ActiveEntryResponse{
		ID:           entry.ID.String(),
		Author:       entry.Author.String(),
		Date:         entry.Date.String(),
		EmotionScale: entry.EmotionScale,
		Text:         entry.Text,
		Expiry:       entry.Expiry.UTC(),
		Ephemeral:    entry.Ephemeral,
	}
}

// EntryResponse is a decrypted past entry.
type EntryResponse struct {
	ID           string  `json:"id"`
	Author       string  `json:"author"`
	Date         string  `json:"date"`
	EmotionScale float32 `json:"emotion_scale"`
	Text         *string `json:"text"`
}

// MapDecryptedEntryToResponse returns nil for a nil entry so the body encodes as null.
func MapDecryptedEntryToResponse(entry *entriesDomain.DecryptedEntry) *EntryResponse {
	if entry == nil {
		return nil
	}
	return &EntryResponse{
		ID:           entry.ID.String(),
		Author:       entry.Author.String(),
		Date:         entry.Date.String(),
		EmotionScale: entry.EmotionScale,
		Text:         entry.Text,
	}
}

// EntrySummaryResponse is one history row.
type EntrySummaryResponse struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	EmotionScale float32 `json:"emotion_scale"`
}

// ListEntriesResponse is one page of history.
type ListEntriesResponse struct {
	Items      []EntrySummaryResponse `json:"items"`
	NextCursor *string                `json:"next_cursor"`
	HasMore    bool                   `json:"has_more"`
}

// MapEntryPageToResponse encodes the next cursor as its opaque token.
func MapEntryPageToResponse(page *entriesDomain.EntryPage) ListEntriesResponse {
	items := make([]EntrySummaryResponse, 0, len(page.Items))
	for _, summary := range page.Items {
		items = append(items, EntrySummaryResponse{
			ID:           summary.ID.String(),
			Date:         summary.Date.String(),
			EmotionScale: summary.EmotionScale,
		})
	}

	var next *string
	if page.NextCursor != nil {
		token := page.NextCursor.Encode()
		next = &token
	}

	return ListEntriesResponse{
		Items:      items,
		NextCursor: next,
		HasMore:    page.HasMore,
	}
}

// AverageResponse carries the mean emotion scale, null when there are no entries.
type AverageResponse struct {
	Average *float64 `json:"average"`
}

// ImportLocalResponse reports how many entries the import stored, including
// the author's expired active entries that moved in the same transaction.
type ImportLocalResponse struct {
	Imported int `json:"imported"`
}
