package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loc = time.FixedZone("BRT", -3*60*60)

func at(day int, hm string) time.Time {
	t, _ := time.Parse("15:04", hm)
	return time.Date(2026, time.March, day, t.Hour(), t.Minute(), 0, 0, loc)
}

func clocks(ts []time.Time) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Format("15:04"))
	}
	return out
}

func openHours(start, end string) *Hours {
	return &Hours{IsOpen: true, StartHour: start, EndHour: end}
}

func TestMergeJoinsOverlappingAndAdjacent(t *testing.T) {
	merged := Merge([]Interval{
		closed(at(2, "12:00"), at(13, "00:00"), SourceWeeklyHours),
		closed(at(2, "10:00"), at(2, "11:00"), SourceReservation),
		closed(at(2, "11:00"), at(2, "11:30"), SourceException),
		closed(at(2, "09:00"), at(2, "09:00"), SourceReservation),
	})

	require.Len(t, merged, 2)
	assert.Equal(t, at(2, "10:00"), merged[0].Start)
	assert.Equal(t, at(2, "11:30"), merged[0].End)
	assert.ElementsMatch(t, []Source{SourceReservation, SourceException}, merged[0].Sources)
	assert.Equal(t, at(2, "12:00"), merged[1].Start)
}

func TestResolveMissingWeeklyRowClosesDay(t *testing.T) {
	got := Resolve(Day{Date: at(2, "00:00")})

	require.Len(t, got, 1)
	assert.Equal(t, at(2, "00:00"), got[0].Start)
	assert.Equal(t, at(3, "00:00"), got[0].End)
	assert.Equal(t, []Source{SourceWeeklyHours}, got[0].Sources)
}

func TestResolveClosedWeekdayClosesDay(t *testing.T) {
	got := Resolve(Day{
		Date:       at(2, "00:00"),
		StaffHours: &Hours{IsOpen: false, StartHour: "09:00", EndHour: "18:00"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, at(3, "00:00"), got[0].End)
}

func TestResolveFullDayExceptionOverridesHours(t *testing.T) {
	got := Resolve(Day{
		Date:            at(2, "00:00"),
		StaffHours:      openHours("09:00", "18:00"),
		StaffExceptions: []Exception{{Type: ExceptionHoliday, AllDay: true}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, []Source{SourceException}, got[0].Sources)
}

func TestResolvePartialExceptionAndReservations(t *testing.T) {
	got := Resolve(Day{
		Date:       at(2, "00:00"),
		StaffHours: openHours("09:00", "18:00"),
		StaffExceptions: []Exception{
			{Type: ExceptionOther, Start: at(2, "13:00"), End: at(2, "14:00")},
		},
		Reservations: []Busy{
			{Start: at(2, "10:00"), End: at(2, "11:00")},
			{Start: at(1, "10:00"), End: at(1, "11:00")}, // other day
		},
	})

	require.Len(t, got, 4)
	assert.Equal(t, at(2, "00:00"), got[0].Start)
	assert.Equal(t, at(2, "09:00"), got[0].End)
	assert.Equal(t, at(2, "10:00"), got[1].Start)
	assert.Equal(t, at(2, "13:00"), got[2].Start)
	assert.Equal(t, at(2, "18:00"), got[3].Start)
	assert.Equal(t, at(3, "00:00"), got[3].End)
}

func TestResolveWorkExceptionOpensClosedWeekday(t *testing.T) {
	got := Resolve(Day{
		Date:       at(2, "00:00"),
		StaffHours: &Hours{IsOpen: false},
		StaffExceptions: []Exception{
			{Type: ExceptionWork, Start: at(2, "10:00"), End: at(2, "14:00")},
		},
	})

	require.Len(t, got, 2)
	assert.Equal(t, at(2, "10:00"), got[0].End)
	assert.Equal(t, at(2, "14:00"), got[1].Start)
}

func TestResolveSalonHoursNarrowStaffHours(t *testing.T) {
	got := Resolve(Day{
		Date:       at(2, "00:00"),
		StaffHours: openHours("08:00", "20:00"),
		SalonHours: openHours("10:00", "18:00"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, at(2, "10:00"), got[0].End)
	assert.Contains(t, got[0].Sources, SourceSalonHours)
	assert.Equal(t, at(2, "18:00"), got[1].Start)
}

func TestResolveSalonExceptionClosesDay(t *testing.T) {
	got := Resolve(Day{
		Date:            at(2, "00:00"),
		StaffHours:      openHours("09:00", "18:00"),
		SalonExceptions: []Exception{{Type: ExceptionHoliday, AllDay: true}},
	})

	require.Len(t, got, 1)
	assert.Equal(t, at(2, "00:00"), got[0].Start)
	assert.Equal(t, at(3, "00:00"), got[0].End)
	assert.Contains(t, got[0].Sources, SourceSalonException)
}

func TestResolveWeekdayFilter(t *testing.T) {
	sunday := time.Sunday
	got := Resolve(Day{
		Date:       at(2, "00:00"), // a Monday
		StaffHours: openHours("09:00", "18:00"),
		Weekday:    &sunday,
	})

	require.Len(t, got, 1)
	assert.Equal(t, at(3, "00:00"), got[0].End)
}

func TestCapacityClosures(t *testing.T) {
	busy := []Busy{
		{Start: at(2, "10:00"), End: at(2, "12:00")},
		{Start: at(2, "11:00"), End: at(2, "13:00")},
		{Start: at(2, "13:00"), End: at(2, "14:00")},
	}

	got := CapacityClosures(busy, 2)
	require.Len(t, got, 1)
	assert.Equal(t, at(2, "11:00"), got[0].Start)
	assert.Equal(t, at(2, "12:00"), got[0].End)

	assert.Empty(t, CapacityClosures(busy, 3))
	assert.Empty(t, CapacityClosures(busy, 0))
}

func TestGenerateScenarioOpenDayWithOneBooking(t *testing.T) {
	closedSet := Resolve(Day{
		Date:         at(2, "00:00"),
		StaffHours:   openHours("09:00", "18:00"),
		Reservations: []Busy{{Start: at(2, "10:00"), End: at(2, "11:00")}},
	})

	slots := Generate(SlotRequest{
		Date:        at(2, "00:00"),
		Closed:      closedSet,
		Duration:    time.Hour,
		Granularity: 30 * time.Minute,
	})

	got := clocks(slots)
	assert.Equal(t, []string{
		"09:00", "11:00", "11:30", "12:00", "12:30", "13:00", "13:30",
		"14:00", "14:30", "15:00", "15:30", "16:00", "16:30", "17:00",
	}, got)
	assert.NotContains(t, got, "09:30")
	assert.NotContains(t, got, "10:00")
	assert.NotContains(t, got, "10:30")
}

func TestGenerateNeverOverlapsClosedIntervals(t *testing.T) {
	closedSet := Resolve(Day{
		Date:       at(2, "00:00"),
		StaffHours: openHours("09:00", "19:00"),
		StaffExceptions: []Exception{
			{Type: ExceptionOther, Start: at(2, "12:10"), End: at(2, "12:50")},
		},
		Reservations: []Busy{
			{Start: at(2, "09:15"), End: at(2, "10:05")},
			{Start: at(2, "15:00"), End: at(2, "16:30")},
		},
	})

	for _, dur := range []time.Duration{15 * time.Minute, 45 * time.Minute, 90 * time.Minute} {
		slots := Generate(SlotRequest{
			Date:        at(2, "00:00"),
			Closed:      closedSet,
			Duration:    dur,
			Granularity: 15 * time.Minute,
		})
		require.NotEmpty(t, slots)
		for _, s := range slots {
			for _, iv := range closedSet {
				assert.False(t, iv.Overlaps(s, s.Add(dur)), "slot %s (%s) overlaps %v", s, dur, iv)
			}
			assert.Zero(t, s.Minute()%15)
		}
	}
}

func TestGenerateShortTrailingWindowYieldsNothing(t *testing.T) {
	closedSet := Resolve(Day{
		Date:         at(2, "00:00"),
		StaffHours:   openHours("09:00", "11:00"),
		Reservations: []Busy{{Start: at(2, "09:00"), End: at(2, "10:30")}},
	})

	slots := Generate(SlotRequest{
		Date:        at(2, "00:00"),
		Closed:      closedSet,
		Duration:    time.Hour,
		Granularity: 30 * time.Minute,
	})

	assert.Empty(t, slots)
	assert.NotNil(t, slots)
}

func TestGenerateLeadTimeAndHorizon(t *testing.T) {
	closedSet := Resolve(Day{Date: at(2, "00:00"), StaffHours: openHours("09:00", "12:00")})

	t.Run("today respects lead time", func(t *testing.T) {
		slots := Generate(SlotRequest{
			Date:        at(2, "00:00"),
			Closed:      closedSet,
			Duration:    30 * time.Minute,
			Granularity: 30 * time.Minute,
			Now:         at(2, "09:10"),
			LeadTime:    60 * time.Minute,
		})
		assert.Equal(t, []string{"10:30", "11:00", "11:30"}, clocks(slots))
	})

	t.Run("past date is empty", func(t *testing.T) {
		slots := Generate(SlotRequest{
			Date:     at(2, "00:00"),
			Closed:   closedSet,
			Duration: 30 * time.Minute,
			Now:      at(3, "08:00"),
		})
		assert.Empty(t, slots)
	})

	t.Run("beyond horizon is empty", func(t *testing.T) {
		far := Resolve(Day{Date: at(20, "00:00"), StaffHours: openHours("09:00", "12:00")})
		slots := Generate(SlotRequest{
			Date:        at(20, "00:00"),
			Closed:      far,
			Duration:    30 * time.Minute,
			Now:         at(2, "08:00"),
			HorizonDays: 14,
		})
		assert.Empty(t, slots)
	})

	t.Run("default granularity", func(t *testing.T) {
		slots := Generate(SlotRequest{
			Date:     at(2, "00:00"),
			Closed:   closedSet,
			Duration: time.Hour,
		})
		assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00"}, clocks(slots))
	})
}

func TestParseClock(t *testing.T) {
	m, ok := ParseClock("09:30")
	assert.True(t, ok)
	assert.Equal(t, 570, m)

	m, ok = ParseClock("24:00")
	assert.True(t, ok)
	assert.Equal(t, 1440, m)

	_, ok = ParseClock("9h")
	assert.False(t, ok)
}
