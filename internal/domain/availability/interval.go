// Package availability turns weekly hours, dated exceptions and existing
// bookings into closed intervals, and closed intervals into bookable slots.
package availability

import (
	"sort"
	"time"
)

// Source tells why an interval is closed.
type Source string

const (
	SourceWeeklyHours    Source = "weekly_hours"
	SourceException      Source = "exception"
	SourceReservation    Source = "reservation"
	SourceSalonHours     Source = "salon_hours"
	SourceSalonException Source = "salon_exception"
	SourceCapacity       Source = "capacity"
)

// Interval is a half-open closed range [Start, End).
type Interval struct {
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Sources []Source  `json:"sources"`
}

func (iv Interval) Overlaps(start, end time.Time) bool {
	return start.Before(iv.End) && iv.Start.Before(end)
}

func closed(start, end time.Time, src Source) Interval {
	return Interval{Start: start, End: end, Sources: []Source{src}}
}

// Merge collapses overlapping and adjacent intervals into a sorted, disjoint
// set. Empty and inverted intervals are dropped.
func Merge(in []Interval) []Interval {
	ivs := make([]Interval, 0, len(in))
	for _, iv := range in {
		if iv.End.After(iv.Start) {
			ivs = append(ivs, iv)
		}
	}
	if len(ivs) == 0 {
		return []Interval{}
	}

	sort.SliceStable(ivs, func(i, j int) bool {
		return ivs[i].Start.Before(ivs[j].Start)
	})

	out := []Interval{copyInterval(ivs[0])}
	for _, iv := range ivs[1:] {
		last := &out[len(out)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			last.Sources = addSources(last.Sources, iv.Sources)
			continue
		}
		out = append(out, copyInterval(iv))
	}
	return out
}

func copyInterval(iv Interval) Interval {
	iv.Sources = append([]Source(nil), iv.Sources...)
	return iv
}

func addSources(dst, src []Source) []Source {
	for _, s := range src {
		found := false
		for _, d := range dst {
			if d == s {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, s)
		}
	}
	return dst
}
