// Package common contains shared constants and sentinel errors used across
// goodnight components.
package common

// AccessTokenHeaderName is the HTTP header key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "Authorization"

// DateLayout is the calendar-day key format used by check-ins and
// goodnight messages. Days are computed in the user's own UTC offset,
// not the server's.
const DateLayout = "20060102"

// SleepTimeLayout is the wall-clock format accepted for a user's
// preferred sleep time.
const SleepTimeLayout = "15:04"
