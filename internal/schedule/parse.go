package schedule

import (
	"strconv"
	"strings"
	"time"
)

// The parsers below sit between the free-text extraction collaborator
// and the allocator. They all fail closed: any malformed input yields
// an empty constraint so scheduling proceeds with a looser constraint
// instead of failing the client.

var dayNames = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
}

// ParseTimeRanges parses "6:00 to 9:00, 14:00 to 17:00" into whole-hour
// ranges. Returns nil on any malformed entry.
func ParseTimeRanges(raw string) []HourRange {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var ranges []HourRange
	for _, part := range strings.Split(raw, ",") {
		fields := strings.SplitN(part, " to ", 2)
		if len(fields) != 2 {
			return nil
		}
		start, ok := parseHour(fields[0])
		if !ok {
			return nil
		}
		end, ok := parseHour(fields[1])
		if !ok {
			return nil
		}
		ranges = append(ranges, HourRange{Start: start, End: end})
	}
	return ranges
}

// ParseDays parses "Monday, Wednesday" into a weekday set. Returns nil
// on any unknown day name.
func ParseDays(raw string) map[time.Weekday]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	days := make(map[time.Weekday]bool)
	for _, part := range strings.Split(raw, ",") {
		day, ok := dayNames[strings.ToLower(strings.TrimSpace(part))]
		if !ok {
			return nil
		}
		days[day] = true
	}
	return days
}

// ParseDates parses "2025-02-03, 2025-02-10" into a date-key set in the
// given location. Returns nil on any malformed date.
func ParseDates(raw string, loc *time.Location) map[time.Time]bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if loc == nil {
		loc = time.Local
	}

	dates := make(map[time.Time]bool)
	for _, part := range strings.Split(raw, ",") {
		parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(part), loc)
		if err != nil {
			return nil
		}
		dates[DateKey(parsed)] = true
	}
	return dates
}

func parseHour(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	head := strings.SplitN(raw, ":", 2)[0]
	hour, err := strconv.Atoi(head)
	if err != nil || hour < 0 || hour > 24 {
		return 0, false
	}
	return hour, true
}
