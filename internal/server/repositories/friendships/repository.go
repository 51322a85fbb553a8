package friendships

import (
	"context"

	"github.com/dmitrijs2005/goodnight/internal/server/models"
)

type Repository interface {
	// CreateRequest inserts a pending request. Returns
	// common.ErrorAlreadyExists when a pending request for the same
	// ordered pair already exists.
	CreateRequest(ctx context.Context, req *models.FriendRequest) error

	GetRequest(ctx context.Context, id string) (*models.FriendRequest, error)

	// FindPending returns the pending request for the ordered
	// (requester, target) pair or common.ErrorNotFound.
	FindPending(ctx context.Context, requesterCode, targetCode string) (*models.FriendRequest, error)

	// SetRequestStatus transitions the request from the expected current
	// status, reporting whether the transition applied. Terminal statuses
	// never transition again.
	SetRequestStatus(ctx context.Context, id string, from, to models.FriendRequestStatus) (bool, error)

	// CreateEdge inserts the canonical edge; re-creating an existing edge
	// is a no-op.
	CreateEdge(ctx context.Context, e *models.FriendshipEdge) error

	GetEdge(ctx context.Context, key string) (*models.FriendshipEdge, error)

	// DeleteEdge removes the edge by key. Deleting an absent edge succeeds.
	DeleteEdge(ctx context.Context, key string) error

	// ListEdges returns every edge the given code participates in.
	ListEdges(ctx context.Context, code string) ([]*models.FriendshipEdge, error)
}
