// Package friendships provides PostgreSQL-backed storage for the directed
// friend-request queue and the undirected, deduplicated edge set.
package friendships

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/dbx"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

// PostgresRepository implements friendship storage over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const requestColumns = `id, requester_code, target_code, status, created_at, updated_at`

func scanRequest(row *sql.Row) (*models.FriendRequest, error) {
	req := &models.FriendRequest{}
	err := row.Scan(&req.ID, &req.RequesterCode, &req.TargetCode, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return req, nil
}

func (r *PostgresRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) error {
	query := `
		INSERT INTO friend_requests (id, requester_code, target_code, status)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, req.ID, req.RequesterCode, req.TargetCode, req.Status)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetRequest(ctx context.Context, id string) (*models.FriendRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM friend_requests WHERE id = $1`
	return scanRequest(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) FindPending(ctx context.Context, requesterCode, targetCode string) (*models.FriendRequest, error) {
	query := `
		SELECT ` + requestColumns + ` FROM friend_requests
		WHERE requester_code = $1 AND target_code = $2 AND status = 'pending'
	`
	return scanRequest(r.db.QueryRowContext(ctx, query, requesterCode, targetCode))
}

func (r *PostgresRepository) SetRequestStatus(ctx context.Context, id string, from, to models.FriendRequestStatus) (bool, error) {
	query := `
		UPDATE friend_requests SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`
	res, err := r.db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) CreateEdge(ctx context.Context, e *models.FriendshipEdge) error {
	query := `
		INSERT INTO friendship_edges (edge_key, member_a, member_b)
		VALUES ($1, $2, $3)
		ON CONFLICT (edge_key) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, e.Key, e.MemberA, e.MemberB); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetEdge(ctx context.Context, key string) (*models.FriendshipEdge, error) {
	query := `SELECT edge_key, member_a, member_b, created_at FROM friendship_edges WHERE edge_key = $1`
	e := &models.FriendshipEdge{}
	err := r.db.QueryRowContext(ctx, query, key).Scan(&e.Key, &e.MemberA, &e.MemberB, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

func (r *PostgresRepository) DeleteEdge(ctx context.Context, key string) error {
	query := `DELETE FROM friendship_edges WHERE edge_key = $1`
	if _, err := r.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListEdges(ctx context.Context, code string) ([]*models.FriendshipEdge, error) {
	query := `
		SELECT edge_key, member_a, member_b, created_at FROM friendship_edges
		WHERE member_a = $1 OR member_b = $1
		ORDER BY created_at
	`
	rows, err := r.db.QueryContext(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.FriendshipEdge
	for rows.Next() {
		var e models.FriendshipEdge
		if err := rows.Scan(&e.Key, &e.MemberA, &e.MemberB, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
