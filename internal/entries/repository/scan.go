// Package repository persists active and encrypted entries in PostgreSQL and MySQL.
//
// Every repository resolves its querier through database.GetTx, so calls made
// inside TxManager.WithTx join the caller's transaction. ClaimExpired is only
// atomic inside such a transaction.
package repository

import (
	"database/sql"
	"time"

	"cloud.google.com/go/civil"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// dateParam renders a calendar date the way both dialects accept for DATE columns.
func dateParam(d civil.Date) string {
	return d.String()
}

func textParam(text *string) sql.NullString {
	if text == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *text, Valid: true}
}

// scanDates drains a single-column DATE result set and closes it.
func scanDates(rows *sql.Rows) ([]civil.Date, error) {
	defer func() {
		_ = rows.Close()
	}()

	var dates []civil.Date
	for rows.Next() {
		var date time.Time
		if err := rows.Scan(&date); err != nil {
			return nil, err
		}
		dates = append(dates, civil.DateOf(date))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dates, nil
}

// scanActiveEntry reads id, author, date, emotion_scale, text, expiry, ephemeral.
// uuid.UUID scans both the PostgreSQL text form and MySQL BINARY(16).
func scanActiveEntry(row rowScanner) (*entriesDomain.ActiveEntry, error) {
	var (
		entry  entriesDomain.ActiveEntry
		date   time.Time
		text   sql.NullString
		expiry time.Time
	)

	if err := row.Scan(
		&entry.ID,
		&entry.Author,
		&date,
		&entry.EmotionScale,
		&text,
		&expiry,
		&entry.Ephemeral,
	); err != nil {
		return nil, err
	}

	entry.Date = civil.DateOf(date)
	entry.Expiry = expiry.UTC()
	if text.Valid {
		entry.Text = &text.String
	}
	return &entry, nil
}

// scanEncryptedEntry reads id, author, date, emotion_scale, encrypted_content, content_key, nonce.
func scanEncryptedEntry(row rowScanner) (*entriesDomain.EncryptedEntry, error) {
	var (
		entry entriesDomain.EncryptedEntry
		date  time.Time
	)

	if err := row.Scan(
		&entry.ID,
		&entry.Author,
		&date,
		&entry.EmotionScale,
		&entry.EncryptedContent,
		&entry.ContentKey,
		&entry.Nonce,
	); err != nil {
		return nil, err
	}

	entry.Date = civil.DateOf(date)
	return &entry, nil
}

func scanSummary(row rowScanner) (*entriesDomain.EntrySummary, error) {
	var (
		summary entriesDomain.EntrySummary
		date    time.Time
	)

	if err := row.Scan(&summary.ID, &date, &summary.EmotionScale); err != nil {
		return nil, err
	}

	summary.Date = civil.DateOf(date)
	return &summary, nil
}
