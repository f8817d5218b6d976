package availability

import (
	"sort"
	"strings"
	"time"
)

// Hours is one weekly-hours row as seen by the resolver.
type Hours struct {
	IsOpen    bool
	StartHour string // HH:MM
	EndHour   string // HH:MM
}

const (
	ExceptionHoliday = "holiday"
	ExceptionWork    = "work"
	ExceptionOther   = "other"
)

// Exception is a dated override. Start/End are used when AllDay is false.
type Exception struct {
	Type   string
	AllDay bool
	Start  time.Time
	End    time.Time
}

// Busy is an occupied range from an existing reservation.
type Busy struct {
	Start time.Time
	End   time.Time
}

// Day gathers everything known about one staff member on one date.
//
// StaffHours nil means no weekly row exists for that weekday, which closes
// the whole day. SalonHours nil means the salon has no weekly row and does not
// constrain the staff.
type Day struct {
	Date time.Time // any instant on the date; its location is the salon's

	StaffHours      *Hours
	StaffExceptions []Exception
	Reservations    []Busy

	SalonHours      *Hours
	SalonExceptions []Exception

	// SalonBusy lists every active reservation of the salon on the date and
	// Capacity is the seat count. Capacity 0 disables the check.
	SalonBusy []Busy
	Capacity  int

	// Weekday filter; nil accepts any date.
	Weekday *time.Weekday
}

// DayBounds returns local midnight of d and of the following day.
func DayBounds(d time.Time) (time.Time, time.Time) {
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	return start, start.AddDate(0, 0, 1)
}

// Resolve returns the merged closed intervals of the day.
func Resolve(day Day) []Interval {
	dayStart, dayEnd := DayBounds(day.Date)
	whole := func(src Source) []Interval {
		return []Interval{closed(dayStart, dayEnd, src)}
	}

	if day.Weekday != nil && day.Date.Weekday() != *day.Weekday {
		return whole(SourceWeeklyHours)
	}

	var out []Interval

	staff, fullyClosed := ownerClosures(dayStart, dayEnd, day.StaffHours, day.StaffExceptions, true,
		SourceWeeklyHours, SourceException)
	if fullyClosed {
		return Merge(staff)
	}
	out = append(out, staff...)

	salon, salonClosed := ownerClosures(dayStart, dayEnd, day.SalonHours, day.SalonExceptions, false,
		SourceSalonHours, SourceSalonException)
	if salonClosed {
		return Merge(append(out, salon...))
	}
	out = append(out, salon...)

	for _, b := range day.Reservations {
		if b.Start.Before(dayEnd) && dayStart.Before(b.End) {
			out = append(out, closed(b.Start, b.End, SourceReservation))
		}
	}

	if day.Capacity > 0 {
		out = append(out, CapacityClosures(day.SalonBusy, day.Capacity)...)
	}

	return Merge(clip(out, dayStart, dayEnd))
}

// ownerClosures computes the closures from one owner's weekly hours and
// exceptions. The bool result reports that the whole day is closed.
func ownerClosures(
	dayStart, dayEnd time.Time,
	hours *Hours,
	exceptions []Exception,
	required bool,
	hoursSrc, exceptionSrc Source,
) ([]Interval, bool) {

	var out []Interval
	var work []Exception
	for _, ex := range exceptions {
		if ex.Type == ExceptionWork {
			work = append(work, ex)
			continue
		}
		if ex.AllDay {
			return []Interval{closed(dayStart, dayEnd, exceptionSrc)}, true
		}
		out = append(out, closed(ex.Start, ex.End, exceptionSrc))
	}

	// Work exceptions replace the weekly window for the date.
	if len(work) > 0 {
		for _, ex := range work {
			if ex.AllDay {
				return out, false
			}
		}
		open := make([]Busy, 0, len(work))
		for _, ex := range work {
			open = append(open, Busy{Start: ex.Start, End: ex.End})
		}
		return append(out, complement(dayStart, dayEnd, open, hoursSrc)...), false
	}

	if hours == nil {
		if required {
			return []Interval{closed(dayStart, dayEnd, hoursSrc)}, true
		}
		return out, false
	}

	start, okStart := atClock(dayStart, hours.StartHour)
	end, okEnd := atClock(dayStart, hours.EndHour)
	if !hours.IsOpen || !okStart || !okEnd || !start.Before(end) {
		return []Interval{closed(dayStart, dayEnd, hoursSrc)}, true
	}

	out = append(out,
		closed(dayStart, start, hoursSrc),
		closed(end, dayEnd, hoursSrc),
	)
	return out, false
}

// complement closes everything in [from, to) not covered by open.
func complement(from, to time.Time, open []Busy, src Source) []Interval {
	sort.Slice(open, func(i, j int) bool { return open[i].Start.Before(open[j].Start) })

	var out []Interval
	cur := from
	for _, o := range open {
		if o.Start.After(cur) {
			out = append(out, closed(cur, o.Start, src))
		}
		if o.End.After(cur) {
			cur = o.End
		}
	}
	if cur.Before(to) {
		out = append(out, closed(cur, to, src))
	}
	return out
}

// CapacityClosures returns the ranges during which at least capacity
// reservations overlap.
func CapacityClosures(busy []Busy, capacity int) []Interval {
	if capacity <= 0 || len(busy) < capacity {
		return nil
	}

	type edge struct {
		at    time.Time
		delta int
	}
	edges := make([]edge, 0, len(busy)*2)
	for _, b := range busy {
		if !b.End.After(b.Start) {
			continue
		}
		edges = append(edges, edge{b.Start, 1}, edge{b.End, -1})
	}
	// Ends sort before starts at the same instant: back-to-back bookings
	// do not overlap.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].at.Equal(edges[j].at) {
			return edges[i].delta < edges[j].delta
		}
		return edges[i].at.Before(edges[j].at)
	})

	var out []Interval
	level := 0
	var openedAt time.Time
	for _, e := range edges {
		prev := level
		level += e.delta
		if prev < capacity && level >= capacity {
			openedAt = e.at
		}
		if prev >= capacity && level < capacity && e.at.After(openedAt) {
			out = append(out, closed(openedAt, e.at, SourceCapacity))
		}
	}
	return out
}

func clip(ivs []Interval, from, to time.Time) []Interval {
	out := ivs[:0]
	for _, iv := range ivs {
		if iv.Start.Before(from) {
			iv.Start = from
		}
		if iv.End.After(to) {
			iv.End = to
		}
		if iv.End.After(iv.Start) {
			out = append(out, iv)
		}
	}
	return out
}

// atClock places an HH:MM clock reading on the given local midnight.
// "24:00" is accepted as the end of the day.
func atClock(midnight time.Time, hm string) (time.Time, bool) {
	hm = strings.TrimSpace(hm)
	if hm == "24:00" {
		return midnight.AddDate(0, 0, 1), true
	}
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(
		midnight.Year(), midnight.Month(), midnight.Day(),
		t.Hour(), t.Minute(), 0, 0,
		midnight.Location(),
	), true
}

// ParseClock validates an HH:MM value.
func ParseClock(hm string) (int, bool) {
	if hm == "24:00" {
		return 24 * 60, true
	}
	t, err := time.Parse("15:04", hm)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}
