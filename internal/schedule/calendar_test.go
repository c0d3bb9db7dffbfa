package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCalendarRemovesOverlappingBlocks(t *testing.T) {
	day := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC) // Tuesday
	cfg := gridConfig(ClockTime{Hour: 9}, ClockTime{Hour: 11}, time.Tuesday)
	blocks := BuildGrid(day, day, cfg)
	require.Len(t, blocks, 9)

	busy := []BusyInterval{{
		Start: time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 4, 10, 30, 0, 0, time.UTC),
	}}

	calendar := BuildCalendar(blocks, busy)

	free := calendar[day]
	require.Len(t, free, 7)
	for _, block := range free {
		assert.False(t, block.Start.Equal(time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC)))
		assert.False(t, block.Start.Equal(time.Date(2025, 2, 4, 10, 15, 0, 0, time.UTC)))
	}
}

func TestBuildCalendarPartialOverlapStillConflicts(t *testing.T) {
	block := Block{
		Start: time.Date(2025, 2, 4, 9, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 4, 9, 15, 0, 0, time.UTC),
	}

	cases := []struct {
		name string
		busy BusyInterval
		want bool
	}{
		{
			name: "busy covers block start",
			busy: BusyInterval{
				Start: time.Date(2025, 2, 4, 8, 50, 0, 0, time.UTC),
				End:   time.Date(2025, 2, 4, 9, 5, 0, 0, time.UTC),
			},
			want: true,
		},
		{
			name: "busy covers block end",
			busy: BusyInterval{
				Start: time.Date(2025, 2, 4, 9, 10, 0, 0, time.UTC),
				End:   time.Date(2025, 2, 4, 9, 30, 0, 0, time.UTC),
			},
			want: true,
		},
		{
			name: "busy inside block",
			busy: BusyInterval{
				Start: time.Date(2025, 2, 4, 9, 5, 0, 0, time.UTC),
				End:   time.Date(2025, 2, 4, 9, 10, 0, 0, time.UTC),
			},
			want: true,
		},
		{
			name: "busy ends at block start",
			busy: BusyInterval{
				Start: time.Date(2025, 2, 4, 8, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 2, 4, 9, 0, 0, 0, time.UTC),
			},
			want: false,
		},
		{
			name: "busy starts at block end",
			busy: BusyInterval{
				Start: time.Date(2025, 2, 4, 9, 15, 0, 0, time.UTC),
				End:   time.Date(2025, 2, 4, 10, 0, 0, 0, time.UTC),
			},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, conflicts(block, tc.busy))
		})
	}
}

func TestBuildCalendarDeterministic(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)
	cfg := gridConfig(ClockTime{Hour: 7}, ClockTime{Hour: 15},
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
	busy := []BusyInterval{{
		Start: time.Date(2025, 2, 5, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 2, 5, 12, 0, 0, 0, time.UTC),
	}}

	first := BuildCalendar(BuildGrid(start, end, cfg), busy)
	second := BuildCalendar(BuildGrid(start, end, cfg), busy)

	assert.Equal(t, first, second)
}

func TestCalendarDatesSorted(t *testing.T) {
	start := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 7, 0, 0, 0, 0, time.UTC)
	cfg := gridConfig(ClockTime{Hour: 9}, ClockTime{Hour: 10},
		time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)

	calendar := BuildCalendar(BuildGrid(start, end, cfg), nil)

	dates := calendar.Dates()
	require.Len(t, dates, 5)
	for i := 1; i < len(dates); i++ {
		assert.True(t, dates[i-1].Before(dates[i]))
	}
}

func TestCalendarFreeBlocks(t *testing.T) {
	day := time.Date(2025, 2, 4, 0, 0, 0, 0, time.UTC)
	cfg := gridConfig(ClockTime{Hour: 9}, ClockTime{Hour: 10}, time.Tuesday)
	calendar := BuildCalendar(BuildGrid(day, day, cfg), nil)

	assert.Equal(t, 5, calendar.FreeBlocks())

	calendar[day][0].Booked = true
	calendar[day][1].Booked = true
	assert.Equal(t, 3, calendar.FreeBlocks())
}
