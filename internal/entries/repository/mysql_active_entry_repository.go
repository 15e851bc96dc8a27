package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/Coops0/jrnlapp/internal/database"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	apperrors "github.com/Coops0/jrnlapp/internal/errors"
)

const mysqlActiveEntryColumns = `id, author, date, emotion_scale, text, expiry, ephemeral`

// MySQLActiveEntryRepository implements active entry persistence for MySQL.
// Identifiers are stored as BINARY(16).
type MySQLActiveEntryRepository struct {
	db *sql.DB
}

// NewMySQLActiveEntryRepository creates a new MySQL active entry repository.
func NewMySQLActiveEntryRepository(db *sql.DB) *MySQLActiveEntryRepository {
	return &MySQLActiveEntryRepository{db: db}
}

func binaryID(id uuid.UUID) []byte {
	return id[:]
}

// Upsert inserts the entry or overwrites scale, text and ephemeral on the
// existing (author, date) row, then reads the stored row back.
func (m *MySQLActiveEntryRepository) Upsert(
	ctx context.Context,
	entry *entriesDomain.ActiveEntry,
) (*entriesDomain.ActiveEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO active_entries (` + mysqlActiveEntryColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			      emotion_scale = VALUES(emotion_scale),
			      text = VALUES(text),
			      ephemeral = VALUES(ephemeral)`

	_, err := querier.ExecContext(
		ctx,
		query,
		binaryID(entry.ID),
		binaryID(entry.Author),
		dateParam(entry.Date),
		entry.EmotionScale,
		textParam(entry.Text),
		entry.Expiry.UTC(),
		entry.Ephemeral,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to upsert active entry")
	}

	return m.GetByAuthorAndDate(ctx, entry.Author, entry.Date)
}

// GetByAuthorAndDate returns the author's active entry for date.
func (m *MySQLActiveEntryRepository) GetByAuthorAndDate(
	ctx context.Context,
	author uuid.UUID,
	date civil.Date,
) (*entriesDomain.ActiveEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlActiveEntryColumns + `
			  FROM active_entries
			  WHERE author = ? AND date = ?
			  LIMIT 1`

	entry, err := scanActiveEntry(querier.QueryRowContext(ctx, query, binaryID(author), dateParam(date)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entriesDomain.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get active entry")
	}
	return entry, nil
}

// DatesByAuthor returns the date of every active entry the author holds,
// expired or not.
func (m *MySQLActiveEntryRepository) DatesByAuthor(ctx context.Context, author uuid.UUID) ([]civil.Date, error) {
	querier := database.GetTx(ctx, m.db)

	rows, err := querier.QueryContext(ctx, `SELECT date FROM active_entries WHERE author = ?`, binaryID(author))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active entry dates")
	}
	dates, err := scanDates(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan active entry dates")
	}
	return dates, nil
}

// ClaimExpired locks the expired non-ephemeral rows with SELECT ... FOR UPDATE
// and deletes exactly those rows. A concurrent claimer blocks on the locks and
// then sees the rows gone. Callers must run it inside a transaction.
func (m *MySQLActiveEntryRepository) ClaimExpired(
	ctx context.Context,
	before time.Time,
	author *uuid.UUID,
) ([]*entriesDomain.ActiveEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlActiveEntryColumns + `
			  FROM active_entries
			  WHERE expiry < ? AND NOT ephemeral
			  FOR UPDATE`
	args := []any{before.UTC()}

	if author != nil {
		query = `SELECT ` + mysqlActiveEntryColumns + `
				 FROM active_entries
				 WHERE expiry < ? AND NOT ephemeral AND author = ?
				 FOR UPDATE`
		args = append(args, binaryID(*author))
	}

	entries, err := m.queryEntries(ctx, querier, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim expired active entries")
	}
	if len(entries) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(entries))
	ids := make([]any, len(entries))
	for i, entry := range entries {
		placeholders[i] = "?"
		ids[i] = binaryID(entry.ID)
	}

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM active_entries WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		ids...,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to delete claimed active entries")
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count claimed active entries")
	}
	if deleted != int64(len(entries)) {
		return nil, fmt.Errorf("claimed %d active entries but deleted %d", len(entries), deleted)
	}

	return entries, nil
}

// PurgeEphemeral deletes ephemeral entries whose expiry is before the given instant.
func (m *MySQLActiveEntryRepository) PurgeEphemeral(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM active_entries WHERE ephemeral AND expiry < ?`,
		before.UTC(),
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to purge ephemeral entries")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count purged ephemeral entries")
	}
	return count, nil
}

func (m *MySQLActiveEntryRepository) queryEntries(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*entriesDomain.ActiveEntry, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*entriesDomain.ActiveEntry
	for rows.Next() {
		entry, err := scanActiveEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
