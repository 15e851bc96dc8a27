package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/Coops0/jrnlapp/internal/database"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	apperrors "github.com/Coops0/jrnlapp/internal/errors"
)

const pgActiveEntryColumns = `id, author, date, emotion_scale, text, expiry, ephemeral`

// PostgreSQLActiveEntryRepository implements active entry persistence for PostgreSQL.
type PostgreSQLActiveEntryRepository struct {
	db *sql.DB
}

// NewPostgreSQLActiveEntryRepository creates a new PostgreSQL active entry repository.
func NewPostgreSQLActiveEntryRepository(db *sql.DB) *PostgreSQLActiveEntryRepository {
	return &PostgreSQLActiveEntryRepository{db: db}
}

// Upsert inserts the entry or, when one exists for (author, date), overwrites
// its scale, text and ephemeral flag. The stored id and expiry are kept.
func (p *PostgreSQLActiveEntryRepository) Upsert(
	ctx context.Context,
	entry *entriesDomain.ActiveEntry,
) (*entriesDomain.ActiveEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO active_entries (` + pgActiveEntryColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (author, date) DO UPDATE
			  SET emotion_scale = EXCLUDED.emotion_scale,
			      text = EXCLUDED.text,
			      ephemeral = EXCLUDED.ephemeral
			  RETURNING ` + pgActiveEntryColumns

	saved, err := scanActiveEntry(querier.QueryRowContext(
		ctx,
		query,
		entry.ID,
		entry.Author,
		dateParam(entry.Date),
		entry.EmotionScale,
		textParam(entry.Text),
		entry.Expiry.UTC(),
		entry.Ephemeral,
	))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to upsert active entry")
	}
	return saved, nil
}

// GetByAuthorAndDate returns the author's active entry for date.
func (p *PostgreSQLActiveEntryRepository) GetByAuthorAndDate(
	ctx context.Context,
	author uuid.UUID,
	date civil.Date,
) (*entriesDomain.ActiveEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgActiveEntryColumns + `
			  FROM active_entries
			  WHERE author = $1 AND date = $2
			  LIMIT 1`

	entry, err := scanActiveEntry(querier.QueryRowContext(ctx, query, author, dateParam(date)))
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
func (p *PostgreSQLActiveEntryRepository) DatesByAuthor(ctx context.Context, author uuid.UUID) ([]civil.Date, error) {
	querier := database.GetTx(ctx, p.db)

	rows, err := querier.QueryContext(ctx, `SELECT date FROM active_entries WHERE author = $1`, author)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list active entry dates")
	}
	dates, err := scanDates(rows)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to scan active entry dates")
	}
	return dates, nil
}

// ClaimExpired deletes and returns every non-ephemeral entry whose expiry is
// before the given instant, optionally for one author. Only one transaction
// can delete a given row, which makes the delete the claim.
func (p *PostgreSQLActiveEntryRepository) ClaimExpired(
	ctx context.Context,
	before time.Time,
	author *uuid.UUID,
) ([]*entriesDomain.ActiveEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM active_entries
			  WHERE expiry < $1 AND NOT ephemeral
			  RETURNING ` + pgActiveEntryColumns
	args := []any{before.UTC()}

	if author != nil {
		query = `DELETE FROM active_entries
				 WHERE expiry < $1 AND NOT ephemeral AND author = $2
				 RETURNING ` + pgActiveEntryColumns
		args = append(args, *author)
	}

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to claim expired active entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*entriesDomain.ActiveEntry
	for rows.Next() {
		entry, err := scanActiveEntry(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan claimed active entry")
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate claimed active entries")
	}

	return entries, nil
}

// PurgeEphemeral deletes ephemeral entries whose expiry is before the given instant.
func (p *PostgreSQLActiveEntryRepository) PurgeEphemeral(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM active_entries WHERE ephemeral AND expiry < $1`,
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
