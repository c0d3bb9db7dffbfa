package schedule

import "time"

// Span is a contiguous range of dates within one week bucket. Start and
// End are inclusive date keys. WeekIndex counts 7-day buckets from the
// overall range start and keys weekly quota tracking.
type Span struct {
	Start     time.Time
	End       time.Time
	WeekIndex int
}

// PartitionWeeks splits [start, end] into an optional partial first
// week (when start is not a Monday and the next Monday falls inside the
// range), the run of whole Monday-aligned weeks, and an optional
// partial trailing span.
func PartitionWeeks(start, end time.Time) []Span {
	start = DateKey(start)
	end = DateKey(end)
	if end.Before(start) {
		return nil
	}

	daysToMonday := (8 - int(start.Weekday())) % 7
	firstMonday := start.AddDate(0, 0, daysToMonday)

	var spans []Span
	if daysToMonday > 0 && !firstMonday.After(end) {
		spans = append(spans, Span{
			Start:     start,
			End:       firstMonday.AddDate(0, 0, -1),
			WeekIndex: 0,
		})
	}

	fullWeeks := daysBetween(firstMonday, end) / 7
	current := firstMonday
	for week := 0; week < fullWeeks; week++ {
		spans = append(spans, Span{
			Start:     current,
			End:       current.AddDate(0, 0, 6),
			WeekIndex: daysBetween(start, current) / 7,
		})
		current = current.AddDate(0, 0, 7)
	}

	if !current.After(end) {
		spans = append(spans, Span{
			Start:     current,
			End:       end,
			WeekIndex: daysBetween(start, current) / 7,
		})
	}

	return spans
}

// Dates enumerates the span's date keys in chronological order.
func (s Span) Dates() []time.Time {
	var dates []time.Time
	for date := s.Start; !date.After(s.End); date = date.AddDate(0, 0, 1) {
		dates = append(dates, date)
	}
	return dates
}
