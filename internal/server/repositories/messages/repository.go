package messages

import (
	"context"

	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

// Filter narrows the candidate pool for a random draw. Zero values relax
// the corresponding constraint (any slot, any author).
type Filter struct {
	SlotKey       string
	MinScore      int
	ExcludeAuthor string
}

type Repository interface {
	// Create inserts a new message. Returns common.ErrorAlreadyExists when
	// the author already has a message for that date.
	Create(ctx context.Context, m *models.Message) error

	Get(ctx context.Context, id string) (*models.Message, error)
	GetByAuthorDate(ctx context.Context, authorCode, date string) (*models.Message, error)

	// PickRandom draws one message uniformly at random from the filtered
	// pool using an index-range scan over the stored rand tiebreaker:
	// first rand >= pivot ascending, then wraparound below the pivot.
	// Returns common.ErrorNotFound when the pool is empty.
	PickRandom(ctx context.Context, f Filter, pivot float64) (*models.Message, error)

	// ApplyDelta atomically increments the shared counters. Only the
	// aggregation consumer calls this.
	ApplyDelta(ctx context.Context, id string, dLikes, dDislikes, dScore int) error
}
