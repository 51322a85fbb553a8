package models

import "time"

// ReactionEntry is the dedupe record guaranteeing one net reaction per
// (VoterCode, MessageID). Value is the voter's current vote: +1 or -1.
type ReactionEntry struct {
	VoterCode string
	MessageID string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DeltaEvent is an immutable record of the net counter change a single
// reaction state change contributes. Events are queued synchronously by the
// reaction service and consumed in batches by the aggregator, which deletes
// them only after the message counters have been durably incremented.
type DeltaEvent struct {
	ID         string
	MessageID  string
	DeltaLikes int
	DeltaDis   int
	DeltaScore int
	CreatedAt  time.Time
}
