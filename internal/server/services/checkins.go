package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/logging"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/checkins"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/repomanager"
)

type CheckinService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	messages    *MessageService
	logger      logging.Logger
}

func NewCheckinService(db *sql.DB, m repomanager.RepositoryManager, ms *MessageService, logger logging.Logger) *CheckinService {
	return &CheckinService{
		db:          db,
		repomanager: m,
		messages:    ms,
		logger:      logger.With("module", "checkin_service"),
	}
}

// SubmitResult reports the stored record, whether this call created it, the
// aggregate snapshot recomputed on fresh creation (nil for duplicates), and
// the reward message when one was resolved.
type SubmitResult struct {
	Checkin       *models.Checkin
	Summary       *models.CheckinSummary
	Reward        *models.Message
	AlreadyExists bool
}

// Submit records at most one check-in for (user, date) and updates the
// user's aggregates exactly once, gated on this call actually creating the
// record. Duplicates — sequential retries or concurrent submissions — are
// detected both before and after the conditional insert and returned as
// success with AlreadyExists set.
func (s *CheckinService) Submit(ctx context.Context, user *models.User, date string, status models.CheckinStatus, messageID string) (*SubmitResult, error) {
	if status != models.CheckinStatusHit && status != models.CheckinStatusLate {
		return nil, fmt.Errorf("%w: invalid status %q", common.ErrorValidation, status)
	}
	if date == "" {
		date = Today(user, time.Now())
	} else if !validDate(date) {
		return nil, fmt.Errorf("%w: invalid date %q", common.ErrorValidation, date)
	}

	repo := s.repomanager.Checkins(s.db)

	existing, err := repo.Get(ctx, user.ShortCode, date)
	if err == nil {
		return s.duplicate(ctx, existing, messageID), nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error reading check-in: %w", err)
	}

	var reward *models.Message
	if messageID == "" {
		// A failed draw must not fail the check-in.
		reward, err = s.messages.Draw(ctx, user, DefaultMinScore, true)
		if err != nil {
			s.logger.Warn(ctx, "reward draw failed, proceeding without message", "error", err.Error())
			reward = nil
		}
		if reward != nil {
			messageID = reward.ID
		}
	}

	record := &models.Checkin{
		UserCode:  user.ShortCode,
		Date:      date,
		Status:    status,
		MessageID: messageID,
	}

	outcome, err := repo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("error creating check-in: %w", err)
	}
	if outcome == checkins.OutcomeAlreadyExists {
		// A concurrent writer won the race; read its record and treat this
		// call as a duplicate. Never an error for the caller.
		existing, err := repo.Get(ctx, user.ShortCode, date)
		if err != nil {
			return nil, fmt.Errorf("error reading check-in after conflict: %w", err)
		}
		return s.duplicate(ctx, existing, messageID), nil
	}

	stored, err := repo.Get(ctx, user.ShortCode, date)
	if err != nil {
		return nil, fmt.Errorf("error reading created check-in: %w", err)
	}

	summary, err := ComputeCheckinSummary(user, status, date)
	if err != nil {
		return nil, err
	}
	if err := s.repomanager.Users(s.db).UpdateSummary(ctx, user.ID, summary); err != nil {
		return nil, fmt.Errorf("error persisting check-in summary: %w", err)
	}

	if reward == nil && messageID != "" {
		reward = s.fetchReward(ctx, messageID)
	}

	return &SubmitResult{Checkin: stored, Summary: summary, Reward: reward}, nil
}

// duplicate handles an already-present record: opportunistically backfill a
// missing reward link when the caller supplied one, then return the record
// with the already-exists signal. Aggregates are never touched here.
func (s *CheckinService) duplicate(ctx context.Context, existing *models.Checkin, messageID string) *SubmitResult {
	if existing.MessageID == "" && messageID != "" {
		repo := s.repomanager.Checkins(s.db)
		if err := repo.SetMessageID(ctx, existing.UserCode, existing.Date, messageID); err != nil {
			// Best-effort: the primary operation already succeeded.
			s.logger.Warn(ctx, "message link backfill failed", "error", err.Error())
		} else {
			existing.MessageID = messageID
		}
	}

	res := &SubmitResult{Checkin: existing, AlreadyExists: true}
	if existing.MessageID != "" {
		res.Reward = s.fetchReward(ctx, existing.MessageID)
	}
	return res
}

// fetchReward loads the linked message for the response payload. Failures
// are logged and swallowed: the link is advisory, the check-in stands.
func (s *CheckinService) fetchReward(ctx context.Context, messageID string) *models.Message {
	m, err := s.messages.Get(ctx, messageID)
	if err != nil {
		s.logger.Warn(ctx, "reward message fetch failed", "message_id", messageID, "error", err.Error())
		return nil
	}
	return m
}
