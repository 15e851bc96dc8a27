package repository

import (
	"context"
	"database/sql"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/Coops0/jrnlapp/internal/database"
	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	apperrors "github.com/Coops0/jrnlapp/internal/errors"
)

const pgEntryColumns = `id, author, date, emotion_scale, encrypted_content, content_key, nonce`

// PostgreSQLEntryRepository implements encrypted entry persistence for PostgreSQL.
type PostgreSQLEntryRepository struct {
	db *sql.DB
}

// NewPostgreSQLEntryRepository creates a new PostgreSQL encrypted entry repository.
func NewPostgreSQLEntryRepository(db *sql.DB) *PostgreSQLEntryRepository {
	return &PostgreSQLEntryRepository{db: db}
}

// Create inserts an encrypted entry. A second entry for the same (author, date)
// fails with ErrEntryAlreadyEncrypted.
func (p *PostgreSQLEntryRepository) Create(ctx context.Context, entry *entriesDomain.EncryptedEntry) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO entries (` + pgEntryColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(ctx, query, p.args(entry)...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return entriesDomain.ErrEntryAlreadyEncrypted
		}
		return apperrors.Wrap(err, "failed to create entry")
	}
	return nil
}

// CreateIfAbsent inserts an encrypted entry unless one already exists for
// (author, date). It reports whether a row was written.
func (p *PostgreSQLEntryRepository) CreateIfAbsent(
	ctx context.Context,
	entry *entriesDomain.EncryptedEntry,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO entries (` + pgEntryColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (author, date) DO NOTHING`

	result, err := querier.ExecContext(ctx, query, p.args(entry)...)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to create entry")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to count created entries")
	}
	return count > 0, nil
}

// GetByAuthorAndID returns one of the author's encrypted entries.
func (p *PostgreSQLEntryRepository) GetByAuthorAndID(
	ctx context.Context,
	author uuid.UUID,
	id uuid.UUID,
) (*entriesDomain.EncryptedEntry, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + pgEntryColumns + `
			  FROM entries
			  WHERE author = $1 AND id = $2
			  LIMIT 1`

	entry, err := scanEncryptedEntry(querier.QueryRowContext(ctx, query, author, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entriesDomain.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get entry")
	}
	return entry, nil
}

// ExistsForDate reports whether the author already has an encrypted entry for date.
func (p *PostgreSQLEntryRepository) ExistsForDate(ctx context.Context, author uuid.UUID, date civil.Date) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	var exists bool
	err := querier.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM entries WHERE author = $1 AND date = $2)`,
		author,
		dateParam(date),
	).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to look up entry date")
	}
	return exists, nil
}

// ListSummaries returns up to limit summaries strictly before cursor, newest first.
func (p *PostgreSQLEntryRepository) ListSummaries(
	ctx context.Context,
	author uuid.UUID,
	cursor entriesDomain.Cursor,
	limit int,
) ([]*entriesDomain.EntrySummary, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, date, emotion_scale
			  FROM entries
			  WHERE author = $1 AND (date, id) < ($2, $3)
			  ORDER BY date DESC, id DESC
			  LIMIT $4`

	rows, err := querier.QueryContext(ctx, query, author, dateParam(cursor.Date), cursor.ID, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list entries")
	}
	defer func() {
		_ = rows.Close()
	}()

	summaries := make([]*entriesDomain.EntrySummary, 0, limit)
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan entry summary")
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate entry summaries")
	}

	return summaries, nil
}

// Average returns the mean emotion scale over the author's encrypted entries,
// or nil when they have none.
func (p *PostgreSQLEntryRepository) Average(ctx context.Context, author uuid.UUID) (*float64, error) {
	querier := database.GetTx(ctx, p.db)

	var avg sql.NullFloat64
	err := querier.QueryRowContext(
		ctx,
		`SELECT AVG(emotion_scale) FROM entries WHERE author = $1`,
		author,
	).Scan(&avg)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to average entries")
	}

	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (p *PostgreSQLEntryRepository) args(entry *entriesDomain.EncryptedEntry) []any {
	return []any{
		entry.ID,
		entry.Author,
		dateParam(entry.Date),
		entry.EmotionScale,
		entry.EncryptedContent,
		entry.ContentKey,
		entry.Nonce,
	}
}
