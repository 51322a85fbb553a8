// Package users provides the PostgreSQL-backed user directory repository.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/dbx"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

// PostgresRepository implements user directory storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, short_code, display_name, sleep_time, slot_key, tz_offset_min,
		streak, total_days, last_checkin_date, today_status, created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.ShortCode, &u.DisplayName, &u.SleepTime, &u.SlotKey, &u.TzOffsetMin,
		&u.Streak, &u.TotalDays, &u.LastCheckinDate, &u.TodayStatus, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, short_code, display_name, sleep_time, slot_key, tz_offset_min, today_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.ShortCode, user.DisplayName, user.SleepTime, user.SlotKey, user.TzOffsetMin, user.TodayStatus)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			if dbx.ConstraintName(err) == "users_short_code_key" {
				return common.ErrorShortCodeTaken
			}
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetByShortCode(ctx context.Context, code string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE short_code = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, code))
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, displayName, sleepTime, slotKey string, tzOffsetMin int) error {
	query := `
		UPDATE users
		SET display_name = $2, sleep_time = $3, slot_key = $4, tz_offset_min = $5, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, displayName, sleepTime, slotKey, tzOffsetMin)
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

func (r *PostgresRepository) UpdateSummary(ctx context.Context, id string, s *models.CheckinSummary) error {
	query := `
		UPDATE users
		SET streak = $2, total_days = $3, last_checkin_date = $4, today_status = $5, updated_at = now()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, s.Streak, s.TotalDays, s.Date, s.TodayStatus)
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
