package models

import "time"

// Message is a user-authored goodnight note. At most one exists per
// (AuthorCode, Date). Counters are mutated only by the reaction aggregator;
// content is immutable after creation. Rand is a stored tiebreaker in [0,1)
// assigned at creation and used for index-range random draws.
type Message struct {
	ID         string
	AuthorCode string
	Date       string // "yyyymmdd"
	Content    string
	Likes      int
	Dislikes   int
	Score      int
	SlotKey    string
	Rand       float64
	CreatedAt  time.Time
}
