package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/goodnight/internal/common"
	"github.com/dmitrijs2005/goodnight/internal/logging"
	"github.com/dmitrijs2005/goodnight/internal/server/models"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/messages"
	"github.com/dmitrijs2005/goodnight/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const maxMessageLen = 280

// DefaultMinScore is the draw floor used when the caller supplies none.
// Slightly negative so mildly-disliked notes still circulate.
const DefaultMinScore = -3

type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *MessageService {
	return &MessageService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "message_service"),
	}
}

// PublishResult reports the stored message and whether this call created it.
type PublishResult struct {
	Message       *models.Message
	AlreadyExists bool
}

// Publish stores the author's goodnight note for the given date (today in
// the author's offset when empty). At most one note exists per (author,
// date); a duplicate publish returns the existing note unchanged.
func (s *MessageService) Publish(ctx context.Context, author *models.User, date, content string) (*PublishResult, error) {
	content = strings.TrimSpace(content)
	if content == "" || len(content) > maxMessageLen {
		return nil, fmt.Errorf("%w: content length must be 1..%d", common.ErrorValidation, maxMessageLen)
	}
	if date == "" {
		date = Today(author, time.Now())
	} else if !validDate(date) {
		return nil, fmt.Errorf("%w: invalid date %q", common.ErrorValidation, date)
	}

	tiebreaker, err := common.MakeRandFloat()
	if err != nil {
		return nil, fmt.Errorf("error generating tiebreaker: %w", err)
	}

	m := &models.Message{
		ID:         uuid.NewString(),
		AuthorCode: author.ShortCode,
		Date:       date,
		Content:    content,
		SlotKey:    author.SlotKey,
		Rand:       tiebreaker,
	}

	repo := s.repomanager.Messages(s.db)

	err = repo.Create(ctx, m)
	if err == nil {
		created, err := repo.GetByAuthorDate(ctx, author.ShortCode, date)
		if err != nil {
			return nil, fmt.Errorf("error reading message: %w", err)
		}
		return &PublishResult{Message: created}, nil
	}
	if errors.Is(err, common.ErrorAlreadyExists) {
		existing, err := repo.GetByAuthorDate(ctx, author.ShortCode, date)
		if err != nil {
			return nil, fmt.Errorf("error reading message: %w", err)
		}
		return &PublishResult{Message: existing, AlreadyExists: true}, nil
	}
	return nil, fmt.Errorf("error creating message: %w", err)
}

// Draw performs the two-stage weighted random draw: first from the caller's
// own slot-key pool, then from all slots. Returns (nil, nil) when no
// candidate exists anywhere — "none available" is not an error.
func (s *MessageService) Draw(ctx context.Context, caller *models.User, minScore int, avoidSelf bool) (*models.Message, error) {
	pivot, err := common.MakeRandFloat()
	if err != nil {
		return nil, fmt.Errorf("error generating pivot: %w", err)
	}

	filter := messages.Filter{
		SlotKey:  caller.SlotKey,
		MinScore: minScore,
	}
	if avoidSelf {
		filter.ExcludeAuthor = caller.ShortCode
	}

	repo := s.repomanager.Messages(s.db)

	m, err := repo.PickRandom(ctx, filter, pivot)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error drawing message: %w", err)
	}

	// Preferred pool empty: fall back to any slot.
	filter.SlotKey = ""
	m, err = repo.PickRandom(ctx, filter, pivot)
	if err == nil {
		return m, nil
	}
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("error drawing message: %w", err)
}

// Get returns the message by id or common.ErrorNotFound.
func (s *MessageService) Get(ctx context.Context, id string) (*models.Message, error) {
	return s.repomanager.Messages(s.db).Get(ctx, id)
}
