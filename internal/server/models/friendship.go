package models

import (
	"time"
)

// FriendRequestStatus is the lifecycle state of a directed friend request:
// pending → accepted | rejected, terminal after that.
type FriendRequestStatus string

const (
	FriendRequestPending  FriendRequestStatus = "pending"
	FriendRequestAccepted FriendRequestStatus = "accepted"
	FriendRequestRejected FriendRequestStatus = "rejected"
)

// FriendRequest is one directed request from RequesterCode to TargetCode.
// At most one pending request exists per ordered pair.
type FriendRequest struct {
	ID            string
	RequesterCode string
	TargetCode    string
	Status        FriendRequestStatus
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FriendshipEdge is the canonical undirected friendship record. Key is
// independent of direction so re-creating the same edge is a no-op.
type FriendshipEdge struct {
	Key       string // EdgeKey(a, b)
	MemberA   string // lexicographically smaller code
	MemberB   string
	CreatedAt time.Time
}

// EdgeKey builds the order-independent edge key for two member codes.
func EdgeKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "#" + b
}
