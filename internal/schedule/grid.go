package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClockTime is a wall-clock instant within a day.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses "HH:MM" into a ClockTime.
func ParseClockTime(raw string) (ClockTime, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ":", 2)
	if len(parts) != 2 {
		return ClockTime{}, fmt.Errorf("invalid clock time %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return ClockTime{}, fmt.Errorf("invalid hour in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return ClockTime{}, fmt.Errorf("invalid minute in %q", raw)
	}
	return ClockTime{Hour: hour, Minute: minute}, nil
}

// GridConfig describes the working window used to generate blocks.
type GridConfig struct {
	Granularity time.Duration
	DayStart    ClockTime
	DayEnd      ClockTime
	WorkingDays map[time.Weekday]bool
}

// BuildGrid emits the ordered block sequence for every working day in
// [start, end] inclusive. Daily start and end instants are rounded down
// to the nearest grid boundary, and generation runs from the rounded
// start through the block that begins exactly at the rounded end
// instant. That trailing block extends one granularity past the working
// window; it is kept deliberately to match the long-standing behavior
// downstream consumers rely on.
func BuildGrid(start, end time.Time, cfg GridConfig) []Block {
	granularity := cfg.Granularity
	if granularity <= 0 {
		granularity = DefaultGranularity
	}

	var blocks []Block
	for date := DateKey(start); !date.After(DateKey(end)); date = date.AddDate(0, 0, 1) {
		if len(cfg.WorkingDays) > 0 && !cfg.WorkingDays[date.Weekday()] {
			continue
		}

		dayStart := roundDownToGrid(atClock(date, cfg.DayStart), granularity)
		dayEnd := roundDownToGrid(atClock(date, cfg.DayEnd), granularity)

		for current := dayStart; !current.After(dayEnd); current = current.Add(granularity) {
			blocks = append(blocks, Block{
				Date:    date,
				Weekday: current.Weekday(),
				Start:   current,
				End:     current.Add(granularity),
			})
		}
	}
	return blocks
}

func atClock(date time.Time, clock ClockTime) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), clock.Hour, clock.Minute, 0, 0, date.Location())
}

func roundDownToGrid(t time.Time, granularity time.Duration) time.Time {
	step := int(granularity / time.Minute)
	if step <= 0 {
		return t
	}
	rounded := (t.Minute() / step) * step
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), rounded, 0, 0, t.Location())
}
