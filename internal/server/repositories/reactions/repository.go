package reactions

import (
	"context"

	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

type Repository interface {
	// Get returns the dedupe entry for (voterCode, messageID) or
	// common.ErrorNotFound.
	Get(ctx context.Context, voterCode, messageID string) (*models.ReactionEntry, error)

	// Create inserts a dedupe entry unless one exists. The boolean reports
	// whether the insert won; a losing caller re-reads and takes the flip
	// path instead.
	Create(ctx context.Context, e *models.ReactionEntry) (bool, error)

	// UpdateValue flips the stored vote only if it still equals prev, so
	// two concurrent flips by the same voter cannot both apply. The
	// boolean reports whether this caller's flip took effect.
	UpdateValue(ctx context.Context, voterCode, messageID string, prev, next int) (bool, error)

	// AppendEvent enqueues an immutable delta event for the aggregator.
	AppendEvent(ctx context.Context, ev *models.DeltaEvent) error

	// ListEvents returns up to limit pending delta events ordered by
	// creation time.
	ListEvents(ctx context.Context, limit int) ([]*models.DeltaEvent, error)

	// DeleteEvents removes consumed delta events by id.
	DeleteEvents(ctx context.Context, ids []string) error
}
