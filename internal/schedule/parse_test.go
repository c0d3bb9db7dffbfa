package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRanges(t *testing.T) {
	ranges := ParseTimeRanges("6:00 to 9:00, 14:00 to 17:00")

	require.Len(t, ranges, 2)
	assert.Equal(t, HourRange{Start: 6, End: 9}, ranges[0])
	assert.Equal(t, HourRange{Start: 14, End: 17}, ranges[1])
}

func TestParseTimeRangesFailsClosed(t *testing.T) {
	cases := []string{
		"",
		"morning",
		"6:00 until 9:00",
		"6:00 to 9:00, garbage",
		"25:00 to 26:00",
	}
	for _, raw := range cases {
		assert.Nil(t, ParseTimeRanges(raw), "input %q must yield no ranges", raw)
	}
}

func TestParseDays(t *testing.T) {
	days := ParseDays("Monday, wednesday, FRIDAY")

	require.Len(t, days, 3)
	assert.True(t, days[time.Monday])
	assert.True(t, days[time.Wednesday])
	assert.True(t, days[time.Friday])
}

func TestParseDaysFailsClosed(t *testing.T) {
	assert.Nil(t, ParseDays(""))
	assert.Nil(t, ParseDays("Monday, Funday"))
}

func TestParseDates(t *testing.T) {
	dates := ParseDates("2025-02-03, 2025-02-10", time.UTC)

	require.Len(t, dates, 2)
	assert.True(t, dates[date(2025, 2, 3)])
	assert.True(t, dates[date(2025, 2, 10)])
}

func TestParseDatesFailsClosed(t *testing.T) {
	assert.Nil(t, ParseDates("", time.UTC))
	assert.Nil(t, ParseDates("2025-02-03, next tuesday", time.UTC))
	assert.Nil(t, ParseDates("03/02/2025", time.UTC))
}
