// Package checkins provides the PostgreSQL-backed check-in ledger
// repository. The (user_code, date) primary key carries the central
// invariant: at most one check-in per user per calendar day.
package checkins

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/dbx"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

// PostgresRepository implements check-in storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userCode, date string) (*models.Checkin, error) {
	query := `
		SELECT user_code, date, status, message_id, created_at FROM checkins
		WHERE user_code = $1 AND date = $2
	`
	c := &models.Checkin{}
	err := r.db.QueryRowContext(ctx, query, userCode, date).
		Scan(&c.UserCode, &c.Date, &c.Status, &c.MessageID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Checkin) (Outcome, error) {
	query := `
		INSERT INTO checkins (user_code, date, status, message_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_code, date) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, c.UserCode, c.Date, c.Status, c.MessageID)
	if err != nil {
		return OutcomeAlreadyExists, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return OutcomeAlreadyExists, fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return OutcomeAlreadyExists, nil
	}
	return OutcomeCreated, nil
}

func (r *PostgresRepository) SetMessageID(ctx context.Context, userCode, date, messageID string) error {
	query := `
		UPDATE checkins SET message_id = $3
		WHERE user_code = $1 AND date = $2 AND message_id = ''
	`
	if _, err := r.db.ExecContext(ctx, query, userCode, date, messageID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
