// Package services implements the backend consistency core: the user
// directory, the check-in ledger, the goodnight message store, reaction
// dedupe with batched aggregation, and the friendship graph. Services are
// invoked per-request with a resolved caller identity and share no
// in-process state beyond the injected database handle.
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
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/repomanager"
)

// Short-code allocation bounds. With 10 attempts over a 10^8 keyspace the
// allocator is a birthday-paradox mitigation, not a guarantee; it fails with
// common.ErrorCapacityExhausted once the directory gets dense enough for ten
// consecutive collisions.
const (
	shortCodeLength   = 8
	shortCodeAttempts = 10
)

const (
	defaultSleepTime = "22:30"
	defaultSlotKey   = "22:30"
)

// ProfilePatch carries optional profile updates; nil fields are unchanged.
type ProfilePatch struct {
	DisplayName *string
	SleepTime   *string
	TzOffsetMin *int
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "user_service"),
	}
}

// EnsureUser returns the directory record for callerID, creating it with a
// freshly allocated short code on first access. Safe under concurrent
// duplicate calls: the loser of an id race reads back the winner's row.
func (s *UserService) EnsureUser(ctx context.Context, callerID string) (*models.User, error) {
	if callerID == "" {
		return nil, fmt.Errorf("%w: empty caller id", common.ErrorValidation)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, callerID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error reading user: %w", err)
	}

	for attempt := 0; attempt < shortCodeAttempts; attempt++ {
		code, err := common.MakeRandDigitString(shortCodeLength)
		if err != nil {
			return nil, fmt.Errorf("error generating short code: %w", err)
		}

		user = &models.User{
			ID:          callerID,
			ShortCode:   code,
			SleepTime:   defaultSleepTime,
			SlotKey:     defaultSlotKey,
			TodayStatus: models.TodayStatusNone,
		}

		err = repo.Create(ctx, user)
		if err == nil {
			return repo.GetByID(ctx, callerID)
		}
		if errors.Is(err, common.ErrorAlreadyExists) {
			// A concurrent ensure for the same caller won the race.
			return repo.GetByID(ctx, callerID)
		}
		if errors.Is(err, common.ErrorShortCodeTaken) {
			continue
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return nil, common.ErrorCapacityExhausted
}

// UpdateProfile validates and applies the patch, recomputing the slot key
// whenever the sleep time changes.
func (s *UserService) UpdateProfile(ctx context.Context, user *models.User, patch ProfilePatch) (*models.User, error) {
	displayName := user.DisplayName
	sleepTime := user.SleepTime
	slot := user.SlotKey
	tzOffset := user.TzOffsetMin

	if patch.DisplayName != nil {
		displayName = *patch.DisplayName
	}
	if patch.SleepTime != nil {
		key, err := slotKey(*patch.SleepTime)
		if err != nil {
			return nil, err
		}
		sleepTime = *patch.SleepTime
		slot = key
	}
	if patch.TzOffsetMin != nil {
		if *patch.TzOffsetMin < minTzOffsetMin || *patch.TzOffsetMin > maxTzOffsetMin {
			return nil, fmt.Errorf("%w: tz offset %d out of range", common.ErrorValidation, *patch.TzOffsetMin)
		}
		tzOffset = *patch.TzOffsetMin
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.UpdateProfile(ctx, user.ID, displayName, sleepTime, slot, tzOffset); err != nil {
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	return repo.GetByID(ctx, user.ID)
}

// ComputeCheckinSummary recomputes the running aggregates for a freshly
// created check-in. Must not be called for a duplicate submission: the
// ledger guarantees date != user.LastCheckinDate here, so totalDays always
// advances by exactly one.
func ComputeCheckinSummary(user *models.User, status models.CheckinStatus, date string) (*models.CheckinSummary, error) {
	streak := 1
	if user.LastCheckinDate != "" {
		next, err := nextDay(user.LastCheckinDate)
		if err != nil {
			return nil, err
		}
		// Consecutive in the user's own calendar extends the streak;
		// any gap resets it.
		if next == date {
			streak = user.Streak + 1
		}
	}

	return &models.CheckinSummary{
		Streak:      streak,
		TotalDays:   user.TotalDays + 1,
		TodayStatus: models.TodayStatus(status),
		SlotKey:     user.SlotKey,
		Date:        date,
	}, nil
}

// Today returns the current calendar-day key in the user's own offset.
func Today(user *models.User, now time.Time) string {
	return dateFor(user.TzOffsetMin, now)
}
