package services

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/goodnight/internal/common"
)

// tz offset bounds in minutes: UTC-12:00 .. UTC+14:00.
const (
	minTzOffsetMin = -720
	maxTzOffsetMin = 840
)

// slotKey quantizes a "HH:MM" sleep time down to its 30-minute bucket,
// e.g. "22:47" → "22:30". Returns common.ErrorValidation for malformed input.
func slotKey(sleepTime string) (string, error) {
	t, err := time.Parse(common.SleepTimeLayout, sleepTime)
	if err != nil {
		return "", fmt.Errorf("%w: invalid sleep time %q", common.ErrorValidation, sleepTime)
	}
	minute := 0
	if t.Minute() >= 30 {
		minute = 30
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), minute), nil
}

// dateFor computes the calendar-day key for the given instant in the user's
// own UTC offset. The user's calendar, not the server's, decides when a day
// rolls over.
func dateFor(tzOffsetMin int, now time.Time) string {
	return now.UTC().Add(time.Duration(tzOffsetMin) * time.Minute).Format(common.DateLayout)
}

// nextDay returns the calendar day following date, or an error for a
// malformed key.
func nextDay(date string) (string, error) {
	t, err := time.Parse(common.DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: invalid date %q", common.ErrorValidation, date)
	}
	return t.AddDate(0, 0, 1).Format(common.DateLayout), nil
}

// validDate reports whether date is a well-formed yyyymmdd key.
func validDate(date string) bool {
	_, err := time.Parse(common.DateLayout, date)
	return err == nil
}
