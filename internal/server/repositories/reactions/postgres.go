// Package reactions provides PostgreSQL-backed storage for reaction dedupe
// entries and the delta event queue consumed by the aggregator.
package reactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/dbx"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

// PostgresRepository implements reaction storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, voterCode, messageID string) (*models.ReactionEntry, error) {
	query := `
		SELECT voter_code, message_id, value, created_at, updated_at FROM reaction_entries
		WHERE voter_code = $1 AND message_id = $2
	`
	e := &models.ReactionEntry{}
	err := r.db.QueryRowContext(ctx, query, voterCode, messageID).
		Scan(&e.VoterCode, &e.MessageID, &e.Value, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) Create(ctx context.Context, e *models.ReactionEntry) (bool, error) {
	query := `
		INSERT INTO reaction_entries (voter_code, message_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (voter_code, message_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, e.VoterCode, e.MessageID, e.Value)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) UpdateValue(ctx context.Context, voterCode, messageID string, prev, next int) (bool, error) {
	query := `
		UPDATE reaction_entries SET value = $4, updated_at = now()
		WHERE voter_code = $1 AND message_id = $2 AND value = $3
	`
	res, err := r.db.ExecContext(ctx, query, voterCode, messageID, prev, next)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) AppendEvent(ctx context.Context, ev *models.DeltaEvent) error {
	query := `
		INSERT INTO delta_events (id, message_id, delta_likes, delta_dislikes, delta_score)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query, ev.ID, ev.MessageID, ev.DeltaLikes, ev.DeltaDis, ev.DeltaScore)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListEvents(ctx context.Context, limit int) ([]*models.DeltaEvent, error) {
	query := `
		SELECT id, message_id, delta_likes, delta_dislikes, delta_score, created_at FROM delta_events
		ORDER BY created_at LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.DeltaEvent
	for rows.Next() {
		var ev models.DeltaEvent
		if err := rows.Scan(&ev.ID, &ev.MessageID, &ev.DeltaLikes, &ev.DeltaDis, &ev.DeltaScore, &ev.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteEvents(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := `DELETE FROM delta_events WHERE id IN (` + strings.Join(placeholders, ", ") + `)`
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
