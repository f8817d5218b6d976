package availability

import "time"

const DefaultGranularity = 30 * time.Minute

// SlotRequest describes which start times to produce for one day.
type SlotRequest struct {
	Date     time.Time
	Closed   []Interval // output of Resolve
	Duration time.Duration

	// Granularity of the start grid, anchored at local midnight.
	Granularity time.Duration

	// Now is the reference instant. Starts before Now+LeadTime are dropped,
	// and dates after Now's date plus HorizonDays yield nothing.
	Now         time.Time
	LeadTime    time.Duration
	HorizonDays int
}

// Generate lists the bookable start instants in ascending order.
func Generate(req SlotRequest) []time.Time {
	slots := []time.Time{}
	if req.Duration <= 0 {
		return slots
	}

	gran := req.Granularity
	if gran <= 0 {
		gran = DefaultGranularity
	}

	dayStart, dayEnd := DayBounds(req.Date)

	if !req.Now.IsZero() {
		today, _ := DayBounds(req.Now.In(dayStart.Location()))
		if dayStart.Before(today) {
			return slots
		}
		if req.HorizonDays > 0 && dayStart.After(today.AddDate(0, 0, req.HorizonDays)) {
			return slots
		}
	}

	var floor time.Time
	if !req.Now.IsZero() {
		floor = req.Now.Add(req.LeadTime)
	}

	closedIdx := 0
	for cur := dayStart; !cur.Add(req.Duration).After(dayEnd); cur = cur.Add(gran) {
		end := cur.Add(req.Duration)

		if cur.Before(floor) {
			continue
		}

		// skip intervals that end at or before this start
		for closedIdx < len(req.Closed) && !req.Closed[closedIdx].End.After(cur) {
			closedIdx++
		}

		conflict := false
		for i := closedIdx; i < len(req.Closed); i++ {
			iv := req.Closed[i]
			if !iv.Start.Before(end) {
				break
			}
			if iv.Overlaps(cur, end) {
				conflict = true
				break
			}
		}

		if !conflict {
			slots = append(slots, cur)
		}
	}

	return slots
}

// Contains reports whether start is one of slots.
func Contains(slots []time.Time, start time.Time) bool {
	for _, s := range slots {
		if s.Equal(start) {
			return true
		}
	}
	return false
}
