package models

import "time"

// CheckinStatus is the terminal status recorded for a (user, date) key.
// A key goes absent → hit or absent → late and never transitions again.
type CheckinStatus string

const (
	CheckinStatusHit  CheckinStatus = "hit"
	CheckinStatusLate CheckinStatus = "late"
)

// Checkin is one calendar day's record for a user. At most one row exists
// per (UserCode, Date); Date is computed in the user's own UTC offset.
// MessageID links the goodnight message drawn as the check-in reward and is
// the only field ever patched after creation (backfilled when missing).
type Checkin struct {
	UserCode  string
	Date      string // "yyyymmdd"
	Status    CheckinStatus
	MessageID string // empty when no reward message was available
	CreatedAt time.Time
}
