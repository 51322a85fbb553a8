package users

import (
	"context"

	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

type Repository interface {
	// Create inserts a new directory record. Returns
	// common.ErrorAlreadyExists when a row with the same internal id is
	// already present (a concurrent ensure won the race) and
	// common.ErrorShortCodeTaken when only the short code collided.
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByShortCode(ctx context.Context, code string) (*models.User, error)

	// UpdateProfile persists the validated profile fields.
	UpdateProfile(ctx context.Context, id, displayName, sleepTime, slotKey string, tzOffsetMin int) error

	// UpdateSummary persists the recomputed check-in aggregates.
	UpdateSummary(ctx context.Context, id string, s *models.CheckinSummary) error
}
