package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/logging"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ReactionOutcome tags what a React call did.
type ReactionOutcome string

const (
	ReactionFirst   ReactionOutcome = "first"
	ReactionDedup   ReactionOutcome = "dedup"
	ReactionUpdated ReactionOutcome = "updated"
)

// reactAttempts bounds the read-then-conditional-write loop. Two concurrent
// votes by the same voter settle within one retry; more contention than that
// on a single (voter, message) pair means something is broken upstream.
const reactAttempts = 3

type ReactionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewReactionService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ReactionService {
	return &ReactionService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "reaction_service"),
	}
}

// deltaFor derives the counter change for a vote transition. prev == 0 means
// first vote. The delta is always computed from the entry's previous value
// at flip time, never assumed.
func deltaFor(prev, next int) (dLikes, dDislikes, dScore int) {
	if prev == 1 {
		dLikes--
		dScore--
	}
	if prev == -1 {
		dDislikes--
		dScore++
	}
	if next == 1 {
		dLikes++
		dScore++
	}
	if next == -1 {
		dDislikes++
		dScore--
	}
	return dLikes, dDislikes, dScore
}

// React records one vote (value ∈ {+1, -1}) by voter on messageID. Repeating
// the same value is a no-op; a different value flips the stored vote and
// enqueues the compensating delta. Concurrent calls by the same voter
// converge via conditional writes: only the caller whose insert or flip
// actually applied enqueues a delta event.
func (s *ReactionService) React(ctx context.Context, voter *models.User, messageID string, value int) (ReactionOutcome, error) {
	if value != 1 && value != -1 {
		return "", fmt.Errorf("%w: invalid reaction value %d", common.ErrorValidation, value)
	}

	if _, err := s.repomanager.Messages(s.db).Get(ctx, messageID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("error reading message: %w", err)
	}

	repo := s.repomanager.Reactions(s.db)

	for attempt := 0; attempt < reactAttempts; attempt++ {
		entry, err := repo.Get(ctx, voter.ShortCode, messageID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("error reading reaction: %w", err)
		}

		if err != nil {
			// First vote: the conditional insert decides the race.
			created, err := repo.Create(ctx, &models.ReactionEntry{
				VoterCode: voter.ShortCode,
				MessageID: messageID,
				Value:     value,
			})
			if err != nil {
				return "", fmt.Errorf("error creating reaction: %w", err)
			}
			if !created {
				continue
			}
			if err := s.enqueue(ctx, messageID, 0, value); err != nil {
				return "", err
			}
			return ReactionFirst, nil
		}

		if entry.Value == value {
			return ReactionDedup, nil
		}

		applied, err := repo.UpdateValue(ctx, voter.ShortCode, messageID, entry.Value, value)
		if err != nil {
			return "", fmt.Errorf("error updating reaction: %w", err)
		}
		if !applied {
			continue
		}
		if err := s.enqueue(ctx, messageID, entry.Value, value); err != nil {
			return "", err
		}
		return ReactionUpdated, nil
	}

	return "", fmt.Errorf("%w: reaction contention not resolved", common.ErrorInternal)
}

func (s *ReactionService) enqueue(ctx context.Context, messageID string, prev, next int) error {
	dLikes, dDislikes, dScore := deltaFor(prev, next)
	ev := &models.DeltaEvent{
		ID:         uuid.NewString(),
		MessageID:  messageID,
		DeltaLikes: dLikes,
		DeltaDis:   dDislikes,
		DeltaScore: dScore,
	}
	if err := s.repomanager.Reactions(s.db).AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("error enqueuing delta event: %w", err)
	}
	return nil
}
