package schedule

import (
	"sort"
	"time"
)

// Calendar maps a date key to the ordered free blocks for that day. It
// is built once per run and mutated in place as sessions are booked.
type Calendar map[time.Time][]Block

// BuildCalendar filters the grid against busy intervals: a block is
// retained only if it has no overlap with any busy interval. Building
// twice from the same inputs yields identical calendars.
func BuildCalendar(blocks []Block, busy []BusyInterval) Calendar {
	calendar := make(Calendar)
	for _, block := range blocks {
		if conflictsAny(block, busy) {
			continue
		}
		key := DateKey(block.Start)
		calendar[key] = append(calendar[key], block)
	}
	return calendar
}

// Dates returns the calendar's date keys in chronological order.
func (c Calendar) Dates() []time.Time {
	dates := make([]time.Time, 0, len(c))
	for date := range c {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// FreeBlocks counts blocks not yet booked.
func (c Calendar) FreeBlocks() int {
	total := 0
	for _, blocks := range c {
		for _, block := range blocks {
			if !block.Booked {
				total++
			}
		}
	}
	return total
}

func conflictsAny(block Block, busy []BusyInterval) bool {
	for _, interval := range busy {
		if conflicts(block, interval) {
			return true
		}
	}
	return false
}

// conflicts reports whether a block [s,e) overlaps a busy interval
// [bs,be): the block start falls inside [bs,be), the block end falls
// inside (bs,be], or the interval is fully contained in the block.
func conflicts(block Block, interval BusyInterval) bool {
	s, e := block.Start, block.End
	bs, be := interval.Start, interval.End

	if !s.Before(bs) && s.Before(be) {
		return true
	}
	if e.After(bs) && !e.After(be) {
		return true
	}
	if !bs.Before(s) && !be.After(e) {
		return true
	}
	return false
}
