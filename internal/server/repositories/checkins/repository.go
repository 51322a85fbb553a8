package checkins

import (
	"context"

	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

// Outcome is the tagged result of a conditional create. The ledger keys on
// it rather than on driver error text: only OutcomeCreated may trigger
// aggregate recomputation.
type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeAlreadyExists
)

type Repository interface {
	// Get returns the record for (userCode, date) or common.ErrorNotFound.
	Get(ctx context.Context, userCode, date string) (*models.Checkin, error)

	// Create inserts the record unless one already exists for the key.
	// The (user, date) key is terminal: no update path exists.
	Create(ctx context.Context, c *models.Checkin) (Outcome, error)

	// SetMessageID backfills a missing reward-message link. Rows that
	// already carry a link are left untouched.
	SetMessageID(ctx context.Context, userCode, date, messageID string) error
}
