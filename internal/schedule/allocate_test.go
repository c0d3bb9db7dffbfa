package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weekdayCalendar(start, end time.Time, dayStart, dayEnd ClockTime) Calendar {
	cfg := gridConfig(dayStart, dayEnd,
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
	return BuildCalendar(BuildGrid(start, end, cfg), nil)
}

func TestRankOrdersByPriorityDescending(t *testing.T) {
	clients := []ClientPreference{
		{Name: "low", SessionDuration: 30, WeeklySessions: 1},
		{Name: "high", SessionDuration: 90, WeeklySessions: 3},
		{Name: "mid", SessionDuration: 60, WeeklySessions: 2},
	}

	ranked := Rank(clients)

	require.Len(t, ranked, 3)
	assert.Equal(t, "high", ranked[0].Name)
	assert.Equal(t, "mid", ranked[1].Name)
	assert.Equal(t, "low", ranked[2].Name)
}

func TestRankStableOnEqualPriority(t *testing.T) {
	clients := []ClientPreference{
		{Name: "first", SessionDuration: 60, WeeklySessions: 2},
		{Name: "second", SessionDuration: 120, WeeklySessions: 1},
		{Name: "third", SessionDuration: 30, WeeklySessions: 4},
	}

	ranked := Rank(clients)

	assert.Equal(t, []string{"first", "second", "third"},
		[]string{ranked[0].Name, ranked[1].Name, ranked[2].Name})
}

func TestAllocateContestedSlotGoesToHigherPriority(t *testing.T) {
	// Monday 2025-02-03, working window 09:00-09:45: exactly one
	// 60-minute run exists, so only one of the two clients can book.
	day := date(2025, 2, 3)
	calendar := weekdayCalendar(day, day, ClockTime{Hour: 9}, ClockTime{Hour: 9, Minute: 45})
	spans := PartitionWeeks(day, day)
	require.Len(t, spans, 1)

	clients := []ClientPreference{
		{Name: "alice", SessionDuration: 60, WeeklySessions: 1},
		{Name: "bob", SessionDuration: 60, WeeklySessions: 2},
	}

	result := NewAllocator(DefaultGranularity, nil).Allocate(clients, calendar, spans)

	assert.Equal(t, []string{"bob", "alice"}, result.Ranked)
	require.Len(t, result.Sessions["bob"], 1)
	assert.Equal(t, time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC), result.Sessions["bob"][0].Start)
	assert.Equal(t, time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC), result.Sessions["bob"][0].End)

	assert.Empty(t, result.Sessions["alice"])
	require.Len(t, result.Shortfalls, 2)
	assert.Equal(t, Shortfall{Client: "bob", WeekIndex: 0, Missing: 1}, result.Shortfalls[0])
	assert.Equal(t, Shortfall{Client: "alice", WeekIndex: 0, Missing: 1}, result.Shortfalls[1])
}

func TestAllocateRelaxesToAnyTimeWhenPreferredWindowFull(t *testing.T) {
	// Three free blocks at 06:00-06:45 are too few for a 60-minute
	// session, so the preferred 6-9 window cannot serve and the second
	// pass books the 10:00-11:00 run instead.
	day := date(2025, 2, 3)
	var blocks []Block
	for _, h := range []struct{ hour, minute int }{
		{6, 0}, {6, 15}, {6, 30},
		{10, 0}, {10, 15}, {10, 30}, {10, 45},
	} {
		start := time.Date(2025, 2, 3, h.hour, h.minute, 0, 0, time.UTC)
		blocks = append(blocks, Block{
			Date:    day,
			Weekday: start.Weekday(),
			Start:   start,
			End:     start.Add(DefaultGranularity),
		})
	}
	calendar := Calendar{day: blocks}
	spans := PartitionWeeks(day, day)

	client := ClientPreference{
		Name:            "carol",
		SessionDuration: 60,
		WeeklySessions:  1,
		PreferredTimes:  []HourRange{{Start: 6, End: 9}},
	}

	result := NewAllocator(DefaultGranularity, nil).Allocate([]ClientPreference{client}, calendar, spans)

	require.Len(t, result.Sessions["carol"], 1)
	assert.Equal(t, time.Date(2025, 2, 3, 10, 0, 0, 0, time.UTC), result.Sessions["carol"][0].Start)
	assert.Equal(t, time.Date(2025, 2, 3, 11, 0, 0, 0, time.UTC), result.Sessions["carol"][0].End)
	assert.Empty(t, result.Shortfalls)
}

func TestAllocatePreferredWindowWinsWhenAvailable(t *testing.T) {
	day := date(2025, 2, 3)
	calendar := weekdayCalendar(day, day, ClockTime{Hour: 7}, ClockTime{Hour: 15})
	spans := PartitionWeeks(day, day)

	client := ClientPreference{
		Name:            "dave",
		SessionDuration: 60,
		WeeklySessions:  1,
		PreferredTimes:  []HourRange{{Start: 12, End: 14}},
	}

	result := NewAllocator(DefaultGranularity, nil).Allocate([]ClientPreference{client}, calendar, spans)

	require.Len(t, result.Sessions["dave"], 1)
	assert.Equal(t, 12, result.Sessions["dave"][0].Start.Hour())
}

func TestAllocateOneSessionPerDate(t *testing.T) {
	// A single working date cannot host two sessions for the same
	// client even with abundant free blocks.
	day := date(2025, 2, 3)
	calendar := weekdayCalendar(day, day, ClockTime{Hour: 7}, ClockTime{Hour: 15})
	spans := PartitionWeeks(day, day)

	client := ClientPreference{Name: "erin", SessionDuration: 60, WeeklySessions: 2}

	result := NewAllocator(DefaultGranularity, nil).Allocate([]ClientPreference{client}, calendar, spans)

	require.Len(t, result.Sessions["erin"], 1)
	require.Len(t, result.Shortfalls, 1)
	assert.Equal(t, Shortfall{Client: "erin", WeekIndex: 0, Missing: 1}, result.Shortfalls[0])
}

func TestAllocateWeeklyQuotaPerWeekBucket(t *testing.T) {
	start, end := date(2025, 2, 3), date(2025, 2, 16)
	calendar := weekdayCalendar(start, end, ClockTime{Hour: 7}, ClockTime{Hour: 15})
	spans := PartitionWeeks(start, end)
	require.Len(t, spans, 2)

	client := ClientPreference{Name: "frank", SessionDuration: 60, WeeklySessions: 1}

	result := NewAllocator(DefaultGranularity, nil).Allocate([]ClientPreference{client}, calendar, spans)

	sessions := result.Sessions["frank"]
	require.Len(t, sessions, 2)
	assert.True(t, sessions[0].Start.Before(date(2025, 2, 10)))
	assert.False(t, sessions[1].Start.Before(date(2025, 2, 10)))
	assert.Empty(t, result.Shortfalls)
}

func TestAllocateVisitsPreferredDaysFirst(t *testing.T) {
	start, end := date(2025, 2, 3), date(2025, 2, 9)
	calendar := weekdayCalendar(start, end, ClockTime{Hour: 7}, ClockTime{Hour: 15})
	spans := PartitionWeeks(start, end)

	client := ClientPreference{
		Name:            "grace",
		SessionDuration: 60,
		WeeklySessions:  1,
		PreferredDays:   map[time.Weekday]bool{time.Wednesday: true},
	}

	result := NewAllocator(DefaultGranularity, nil).Allocate([]ClientPreference{client}, calendar, spans)

	require.Len(t, result.Sessions["grace"], 1)
	assert.Equal(t, time.Wednesday, result.Sessions["grace"][0].Start.Weekday())
}

func TestAllocateSkipsUnavailableDates(t *testing.T) {
	start, end := date(2025, 2, 3), date(2025, 2, 9)
	calendar := weekdayCalendar(start, end, ClockTime{Hour: 7}, ClockTime{Hour: 15})
	spans := PartitionWeeks(start, end)

	client := ClientPreference{
		Name:             "heidi",
		SessionDuration:  60,
		WeeklySessions:   1,
		UnavailableDates: map[time.Time]bool{date(2025, 2, 3): true},
	}

	result := NewAllocator(DefaultGranularity, nil).Allocate([]ClientPreference{client}, calendar, spans)

	require.Len(t, result.Sessions["heidi"], 1)
	assert.NotEqual(t, date(2025, 2, 3), DateKey(result.Sessions["heidi"][0].Start))
}

func TestAllocateMisalignedDurationSkipsClient(t *testing.T) {
	day := date(2025, 2, 3)
	calendar := weekdayCalendar(day, day, ClockTime{Hour: 7}, ClockTime{Hour: 15})
	spans := PartitionWeeks(day, day)

	client := ClientPreference{Name: "ivan", SessionDuration: 50, WeeklySessions: 1}

	result := NewAllocator(DefaultGranularity, nil).Allocate([]ClientPreference{client}, calendar, spans)

	sessions, ok := result.Sessions["ivan"]
	require.True(t, ok, "skipped client still gets a result entry")
	assert.Empty(t, sessions)
}

func TestAllocateDeterministic(t *testing.T) {
	start, end := date(2025, 2, 3), date(2025, 2, 16)
	clients := []ClientPreference{
		{Name: "alice", SessionDuration: 60, WeeklySessions: 2, PreferredTimes: []HourRange{{Start: 7, End: 10}}},
		{Name: "bob", SessionDuration: 90, WeeklySessions: 1, PreferredDays: map[time.Weekday]bool{time.Friday: true}},
		{Name: "carol", SessionDuration: 60, WeeklySessions: 2},
	}
	spans := PartitionWeeks(start, end)

	run := func() Result {
		calendar := weekdayCalendar(start, end, ClockTime{Hour: 7}, ClockTime{Hour: 15})
		return NewAllocator(DefaultGranularity, nil).Allocate(clients, calendar, spans)
	}

	assert.Equal(t, run(), run())
}

func TestAllocateSessionsHaveExactDuration(t *testing.T) {
	start, end := date(2025, 2, 3), date(2025, 2, 9)
	calendar := weekdayCalendar(start, end, ClockTime{Hour: 7}, ClockTime{Hour: 15})
	spans := PartitionWeeks(start, end)

	clients := []ClientPreference{
		{Name: "alice", SessionDuration: 90, WeeklySessions: 3},
		{Name: "bob", SessionDuration: 45, WeeklySessions: 2},
	}

	result := NewAllocator(DefaultGranularity, nil).Allocate(clients, calendar, spans)

	for _, client := range clients {
		for _, session := range result.Sessions[client.Name] {
			assert.Equal(t, time.Duration(client.SessionDuration)*time.Minute, session.End.Sub(session.Start))
		}
	}
}

func TestAllocateNoOverlapsBetweenClients(t *testing.T) {
	start, end := date(2025, 2, 3), date(2025, 2, 9)
	calendar := weekdayCalendar(start, end, ClockTime{Hour: 9}, ClockTime{Hour: 12})
	spans := PartitionWeeks(start, end)

	clients := []ClientPreference{
		{Name: "alice", SessionDuration: 60, WeeklySessions: 3},
		{Name: "bob", SessionDuration: 60, WeeklySessions: 3},
		{Name: "carol", SessionDuration: 60, WeeklySessions: 3},
	}

	result := NewAllocator(DefaultGranularity, nil).Allocate(clients, calendar, spans)

	var all []Session
	for _, sessions := range result.Sessions {
		all = append(all, sessions...)
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			overlap := a.Start.Before(b.End) && b.Start.Before(a.End)
			assert.False(t, overlap, "sessions %v and %v overlap", a, b)
		}
	}
}
