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

type FriendshipService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewFriendshipService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *FriendshipService {
	return &FriendshipService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "friendship_service"),
	}
}

// SendRequestResult reports the relevant request. Incoming is set when the
// target had already sent a request the other way — the caller should act on
// that one instead of creating a duplicate. AlreadyExists is set when the
// identical outgoing request was already pending.
type SendRequestResult struct {
	Request       *models.FriendRequest
	Incoming      bool
	AlreadyExists bool
}

// SendRequest creates a pending friend request from requester to targetCode.
func (s *FriendshipService) SendRequest(ctx context.Context, requester *models.User, targetCode string) (*SendRequestResult, error) {
	if targetCode == "" {
		return nil, fmt.Errorf("%w: empty target code", common.ErrorValidation)
	}
	if targetCode == requester.ShortCode {
		return nil, fmt.Errorf("%w: cannot befriend yourself", common.ErrorValidation)
	}

	if _, err := s.repomanager.Users(s.db).GetByShortCode(ctx, targetCode); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error reading target user: %w", err)
	}

	repo := s.repomanager.Friendships(s.db)

	key := models.EdgeKey(requester.ShortCode, targetCode)
	if _, err := repo.GetEdge(ctx, key); err == nil {
		return nil, fmt.Errorf("%w: already friends", common.ErrorAlreadyExists)
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error reading edge: %w", err)
	}

	// An incoming request from the target is surfaced, not duplicated.
	if incoming, err := repo.FindPending(ctx, targetCode, requester.ShortCode); err == nil {
		return &SendRequestResult{Request: incoming, Incoming: true}, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error reading pending request: %w", err)
	}

	if outgoing, err := repo.FindPending(ctx, requester.ShortCode, targetCode); err == nil {
		return &SendRequestResult{Request: outgoing, AlreadyExists: true}, nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error reading pending request: %w", err)
	}

	req := &models.FriendRequest{
		ID:            uuid.NewString(),
		RequesterCode: requester.ShortCode,
		TargetCode:    targetCode,
		Status:        models.FriendRequestPending,
	}

	err := repo.CreateRequest(ctx, req)
	if err == nil {
		return &SendRequestResult{Request: req}, nil
	}
	if errors.Is(err, common.ErrorAlreadyExists) {
		// A concurrent identical send won; surface its request.
		existing, err := repo.FindPending(ctx, requester.ShortCode, targetCode)
		if err != nil {
			return nil, fmt.Errorf("error reading pending request after conflict: %w", err)
		}
		return &SendRequestResult{Request: existing, AlreadyExists: true}, nil
	}
	return nil, fmt.Errorf("error creating request: %w", err)
}

// Respond lets the request's target accept or reject it. Accepting
// idempotently creates the undirected edge; a repeated call with the same
// decision succeeds without re-transitioning.
func (s *FriendshipService) Respond(ctx context.Context, responder *models.User, requestID string, decision models.FriendRequestStatus) (*models.FriendRequest, error) {
	if decision != models.FriendRequestAccepted && decision != models.FriendRequestRejected {
		return nil, fmt.Errorf("%w: invalid decision %q", common.ErrorValidation, decision)
	}

	repo := s.repomanager.Friendships(s.db)

	req, err := repo.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error reading request: %w", err)
	}
	if req.TargetCode != responder.ShortCode {
		return nil, common.ErrorForbidden
	}

	applied, err := repo.SetRequestStatus(ctx, requestID, models.FriendRequestPending, decision)
	if err != nil {
		return nil, fmt.Errorf("error updating request: %w", err)
	}
	if !applied {
		// Already terminal: a retry with the same decision is fine, a
		// conflicting one is not.
		current, err := repo.GetRequest(ctx, requestID)
		if err != nil {
			return nil, fmt.Errorf("error re-reading request: %w", err)
		}
		if current.Status != decision {
			return nil, fmt.Errorf("%w: request already %s", common.ErrorAlreadyExists, current.Status)
		}
		req = current
	} else {
		req.Status = decision
	}

	if decision == models.FriendRequestAccepted {
		if err := s.ensureEdge(ctx, req.RequesterCode, req.TargetCode); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// Confirm is the requester-side reconciliation after acceptance: if the
// acceptor's edge-creation step was interrupted, the edge is created now.
// Safe to call any number of times.
func (s *FriendshipService) Confirm(ctx context.Context, requester *models.User, requestID string) (*models.FriendRequest, error) {
	repo := s.repomanager.Friendships(s.db)

	req, err := repo.GetRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error reading request: %w", err)
	}
	if req.RequesterCode != requester.ShortCode {
		return nil, common.ErrorForbidden
	}

	if req.Status == models.FriendRequestAccepted {
		if err := s.ensureEdge(ctx, req.RequesterCode, req.TargetCode); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// Remove deletes the friendship edge with targetCode. Removing an absent
// edge succeeds, so a retried unfriend is harmless.
func (s *FriendshipService) Remove(ctx context.Context, caller *models.User, targetCode string) error {
	if targetCode == "" {
		return fmt.Errorf("%w: empty target code", common.ErrorValidation)
	}
	key := models.EdgeKey(caller.ShortCode, targetCode)
	if err := s.repomanager.Friendships(s.db).DeleteEdge(ctx, key); err != nil {
		return fmt.Errorf("error deleting edge: %w", err)
	}
	return nil
}

// ListFriends returns the short codes of everyone the caller shares an edge
// with.
func (s *FriendshipService) ListFriends(ctx context.Context, caller *models.User) ([]string, error) {
	edges, err := s.repomanager.Friendships(s.db).ListEdges(ctx, caller.ShortCode)
	if err != nil {
		return nil, fmt.Errorf("error listing edges: %w", err)
	}

	friends := make([]string, 0, len(edges))
	for _, e := range edges {
		if e.MemberA == caller.ShortCode {
			friends = append(friends, e.MemberB)
		} else {
			friends = append(friends, e.MemberA)
		}
	}
	return friends, nil
}

// ensureEdge is the get-then-set-if-absent step shared by Respond and
// Confirm. A "not found" probe means go ahead and create; the conditional
// insert makes the edge idempotent under races.
func (s *FriendshipService) ensureEdge(ctx context.Context, a, b string) error {
	repo := s.repomanager.Friendships(s.db)

	key := models.EdgeKey(a, b)
	_, err := repo.GetEdge(ctx, key)
	if err == nil {
		return nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("error reading edge: %w", err)
	}

	memberA, memberB := a, b
	if memberB < memberA {
		memberA, memberB = memberB, memberA
	}
	if err := repo.CreateEdge(ctx, &models.FriendshipEdge{Key: key, MemberA: memberA, MemberB: memberB}); err != nil {
		return fmt.Errorf("error creating edge: %w", err)
	}
	return nil
}
