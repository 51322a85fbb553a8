package models

import "time"

// TodayStatus describes where the user stands for the current calendar day.
type TodayStatus string

const (
	TodayStatusHit     TodayStatus = "hit"
	TodayStatusLate    TodayStatus = "late"
	TodayStatusMiss    TodayStatus = "miss"
	TodayStatusPending TodayStatus = "pending"
	TodayStatusNone    TodayStatus = "none"
)

// User is the directory record for a resolved caller. ID is the stable
// internal identity; ShortCode is the public handle used for friend
// discovery. The running aggregates (Streak, TotalDays, LastCheckinDate,
// TodayStatus) are maintained exclusively by the check-in ledger.
type User struct {
	ID              string
	ShortCode       string
	DisplayName     string
	SleepTime       string // "HH:MM"
	SlotKey         string // SleepTime quantized to a 30-minute bucket
	TzOffsetMin     int
	Streak          int
	TotalDays       int
	LastCheckinDate string // "yyyymmdd", empty until the first check-in
	TodayStatus     TodayStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// CheckinSummary is the recomputed aggregate snapshot persisted after a
// freshly created check-in.
type CheckinSummary struct {
	Streak      int
	TotalDays   int
	TodayStatus TodayStatus
	SlotKey     string
	Date        string
}
