package model

import (
	"errors"
	"regexp"
	"time"
)

// Slot is one bookable time window on a calendar date.  The pair
// (Date, Time) is unique across all slots.
//
// Fields:
//
//	ID        – opaque identifier (UUID string).
//	Date      – calendar date, YYYY-MM-DD.
//	Time      – window, HH:MM-HH:MM.
//	IsBooked  – set once by a reservation, never cleared.
//	BookedBy  – id of the booking that reserved the slot (nil when free).
//	IsActive  – soft-delete flag; inactive slots are hidden from listings.
//	CreatedAt – creation timestamp (UTC).
//	Booking   – most recent booking referencing the slot, filled by List.
type Slot struct {
	ID        string
	Date      string
	Time      string
	IsBooked  bool
	BookedBy  *string
	IsActive  bool
	CreatedAt time.Time
	Booking   *BookingSummary
}

const (
	DateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}-\d{2}:\d{2}$`)
)

var (
	ErrDateFormat = errors.New("date must be in YYYY-MM-DD format")
	ErrTimeFormat = errors.New("time must be in HH:MM-HH:MM format")
	ErrTimeOrder  = errors.New("time range must start before it ends")
)

// ValidateDate checks the fixed YYYY-MM-DD pattern and that the value is a
// real calendar date.
func ValidateDate(s string) error {
	if !datePattern.MatchString(s) {
		return ErrDateFormat
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return ErrDateFormat
	}
	return nil
}

// ValidateTimeRange checks the fixed HH:MM-HH:MM pattern, that both ends
// are clock times and that the window is not empty.
func ValidateTimeRange(s string) error {
	if !timePattern.MatchString(s) {
		return ErrTimeFormat
	}
	from, err := time.Parse(clockLayout, s[:5])
	if err != nil {
		return ErrTimeFormat
	}
	to, err := time.Parse(clockLayout, s[6:])
	if err != nil {
		return ErrTimeFormat
	}
	if !from.Before(to) {
		return ErrTimeOrder
	}
	return nil
}

// Less orders slots by (Date, Time).  Both fields are fixed-width so
// string order matches chronological order.
func (s Slot) Less(o Slot) bool {
	if s.Date != o.Date {
		return s.Date < o.Date
	}
	return s.Time < o.Time
}
