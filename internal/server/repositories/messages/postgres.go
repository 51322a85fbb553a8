// Package messages provides the PostgreSQL-backed goodnight message store.
package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/dbx"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

// PostgresRepository implements message storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const messageColumns = `id, author_code, date, content, likes, dislikes, score, slot_key, rand, created_at`

func scanMessage(row *sql.Row) (*models.Message, error) {
	m := &models.Message{}
	err := row.Scan(&m.ID, &m.AuthorCode, &m.Date, &m.Content, &m.Likes, &m.Dislikes,
		&m.Score, &m.SlotKey, &m.Rand, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) Create(ctx context.Context, m *models.Message) error {
	query := `
		INSERT INTO messages (id, author_code, date, content, slot_key, rand)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.AuthorCode, m.Date, m.Content, m.SlotKey, m.Rand)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	return scanMessage(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByAuthorDate(ctx context.Context, authorCode, date string) (*models.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE author_code = $1 AND date = $2`
	return scanMessage(r.db.QueryRowContext(ctx, query, authorCode, date))
}

// pickQuery assembles the filtered range-scan query. Direction ">= pivot,
// ascending" covers [pivot, 1); the wraparound "< pivot, descending" covers
// the remainder so a non-empty pool always yields a row.
func pickQuery(f Filter, wraparound bool) (string, []any) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE score >= $1`
	args := []any{f.MinScore}

	if f.SlotKey != "" {
		args = append(args, f.SlotKey)
		query += fmt.Sprintf(" AND slot_key = $%d", len(args))
	}
	if f.ExcludeAuthor != "" {
		args = append(args, f.ExcludeAuthor)
		query += fmt.Sprintf(" AND author_code <> $%d", len(args))
	}

	if wraparound {
		query += fmt.Sprintf(" AND rand < $%d ORDER BY rand DESC LIMIT 1", len(args)+1)
	} else {
		query += fmt.Sprintf(" AND rand >= $%d ORDER BY rand ASC LIMIT 1", len(args)+1)
	}
	return query, args
}

func (r *PostgresRepository) PickRandom(ctx context.Context, f Filter, pivot float64) (*models.Message, error) {
	query, args := pickQuery(f, false)
	m, err := scanMessage(r.db.QueryRowContext(ctx, query, append(args, pivot)...))
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, err
	}

	query, args = pickQuery(f, true)
	return scanMessage(r.db.QueryRowContext(ctx, query, append(args, pivot)...))
}

func (r *PostgresRepository) ApplyDelta(ctx context.Context, id string, dLikes, dDislikes, dScore int) error {
	query := `
		UPDATE messages
		SET likes = likes + $2, dislikes = dislikes + $3, score = score + $4
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, dLikes, dDislikes, dScore)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
