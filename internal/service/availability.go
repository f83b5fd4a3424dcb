package service

import "github.com/iliyamo/practice-booking/internal/model"

// Availability is the public view of open slots: the distinct dates that
// still have an unbooked slot, in first-seen order, and the slots per date.
type Availability struct {
	Dates  []string
	ByDate map[string][]model.Slot
}

// DaySlots is one date with its open slots.
type DaySlots struct {
	Date  string
	Slots []model.Slot
}

// GroupAvailable drops booked slots and groups the rest by date.  Input
// order is kept, so a (date, time) sorted list gives sorted groups.
func GroupAvailable(slots []model.Slot) Availability {
	a := Availability{Dates: []string{}, ByDate: map[string][]model.Slot{}}
	for _, s := range slots {
		if s.IsBooked {
			continue
		}
		if _, seen := a.ByDate[s.Date]; !seen {
			a.Dates = append(a.Dates, s.Date)
		}
		a.ByDate[s.Date] = append(a.ByDate[s.Date], s)
	}
	return a
}

// SlotsOn returns the open slots of date.  A date without open slots gives
// an empty, non-nil slice.
func (a Availability) SlotsOn(date string) []model.Slot {
	if s, ok := a.ByDate[date]; ok {
		return s
	}
	return []model.Slot{}
}

// Days lists every date with its slots in date order.
func (a Availability) Days() []DaySlots {
	out := make([]DaySlots, 0, len(a.Dates))
	for _, d := range a.Dates {
		out = append(out, DaySlots{Date: d, Slots: a.ByDate[d]})
	}
	return out
}
