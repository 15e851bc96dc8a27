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

const mysqlEntryColumns = `id, author, date, emotion_scale, encrypted_content, content_key, nonce`

// MySQLEntryRepository implements encrypted entry persistence for MySQL.
type MySQLEntryRepository struct {
	db *sql.DB
}

// NewMySQLEntryRepository creates a new MySQL encrypted entry repository.
func NewMySQLEntryRepository(db *sql.DB) *MySQLEntryRepository {
	return &MySQLEntryRepository{db: db}
}

// Create inserts an encrypted entry. A duplicate (author, date) fails with
// ErrEntryAlreadyEncrypted.
func (m *MySQLEntryRepository) Create(ctx context.Context, entry *entriesDomain.EncryptedEntry) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO entries (` + mysqlEntryColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, m.args(entry)...)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return entriesDomain.ErrEntryAlreadyEncrypted
		}
		return apperrors.Wrap(err, "failed to create entry")
	}
	return nil
}

// CreateIfAbsent inserts an encrypted entry unless (author, date) is taken.
// The no-op update makes MySQL report zero affected rows for a duplicate.
func (m *MySQLEntryRepository) CreateIfAbsent(
	ctx context.Context,
	entry *entriesDomain.EncryptedEntry,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO entries (` + mysqlEntryColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE id = id`

	result, err := querier.ExecContext(ctx, query, m.args(entry)...)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to create entry")
	}

	count, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to count created entries")
	}
	return count == 1, nil
}

// GetByAuthorAndID returns one of the author's encrypted entries.
func (m *MySQLEntryRepository) GetByAuthorAndID(
	ctx context.Context,
	author uuid.UUID,
	id uuid.UUID,
) (*entriesDomain.EncryptedEntry, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlEntryColumns + `
			  FROM entries
			  WHERE author = ? AND id = ?
			  LIMIT 1`

	entry, err := scanEncryptedEntry(querier.QueryRowContext(ctx, query, binaryID(author), binaryID(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, entriesDomain.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get entry")
	}
	return entry, nil
}

// ExistsForDate reports whether the author already has an encrypted entry for date.
func (m *MySQLEntryRepository) ExistsForDate(ctx context.Context, author uuid.UUID, date civil.Date) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	var exists bool
	err := querier.QueryRowContext(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM entries WHERE author = ? AND date = ?)`,
		binaryID(author),
		dateParam(date),
	).Scan(&exists)
	if err != nil {
		return false, apperrors.Wrap(err, "failed to look up entry date")
	}
	return exists, nil
}

// ListSummaries returns up to limit summaries strictly before cursor, newest first.
func (m *MySQLEntryRepository) ListSummaries(
	ctx context.Context,
	author uuid.UUID,
	cursor entriesDomain.Cursor,
	limit int,
) ([]*entriesDomain.EntrySummary, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, date, emotion_scale
			  FROM entries
			  WHERE author = ? AND (date, id) < (?, ?)
			  ORDER BY date DESC, id DESC
			  LIMIT ?`

	rows, err := querier.QueryContext(
		ctx,
		query,
		binaryID(author),
		dateParam(cursor.Date),
		binaryID(cursor.ID),
		limit,
	)
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

// Average returns the mean emotion scale, or nil when the author has no entries.
func (m *MySQLEntryRepository) Average(ctx context.Context, author uuid.UUID) (*float64, error) {
	querier := database.GetTx(ctx, m.db)

	var avg sql.NullFloat64
	err := querier.QueryRowContext(
		ctx,
		`SELECT AVG(emotion_scale) FROM entries WHERE author = ?`,
		binaryID(author),
	).Scan(&avg)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to average entries")
	}

	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (m *MySQLEntryRepository) args(entry *entriesDomain.EncryptedEntry) []any {
	return []any{
		binaryID(entry.ID),
		binaryID(entry.Author),
		dateParam(entry.Date),
		entry.EmotionScale,
		entry.EncryptedContent,
		entry.ContentKey,
		entry.Nonce,
	}
}
