// Package schedule implements the availability-modeling and greedy
// allocation engine: a date range is discretised into fixed-size time
// blocks, busy intervals are subtracted, and contiguous free runs are
// handed out to clients in priority order across week boundaries.
//
// The engine is single-threaded by construction. The availability
// calendar is owned by one scheduling run and mutated only by the
// allocator, strictly in client rank order; that fold order is the sole
// conflict-resolution mechanism.
package schedule

import "time"

// DefaultGranularity is the smallest schedulable unit of time.
const DefaultGranularity = 15 * time.Minute

// Block is one grid cell of schedulable time. Within a day blocks are
// contiguous, non-overlapping and sorted by start. Booked only ever
// transitions false to true for the lifetime of a run.
type Block struct {
	Date    time.Time
	Weekday time.Weekday
	Start   time.Time
	End     time.Time
	Booked  bool
}

// BusyInterval is an externally supplied exclusion window. It need not
// be grid-aligned and may overlap other intervals.
type BusyInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// HourRange is a half-open preference window expressed in whole hours,
// e.g. {6, 9} for "6:00 to 9:00".
type HourRange struct {
	Start int
	End   int
}

// ClientPreference is the fully structured scheduling request for one
// client. It is read-only input to the allocator. MonthlySessions is
// carried through but not enforced as a quota.
type ClientPreference struct {
	Name             string
	Email            string
	Location         string
	SessionDuration  int // minutes
	WeeklySessions   int
	MonthlySessions  int
	PreferredDays    map[time.Weekday]bool
	PreferredTimes   []HourRange
	UnavailableDates map[time.Time]bool
}

// Priority is the ranking score used for first-fit allocation order.
func (p ClientPreference) Priority() int {
	return p.SessionDuration * p.WeeklySessions
}

// Session is a single booked appointment, aligned to grid boundaries.
type Session struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Shortfall records a week bucket in which a client received fewer
// sessions than requested. Shortfalls are reported, never raised.
type Shortfall struct {
	Client    string `json:"client"`
	WeekIndex int    `json:"weekIndex"`
	Missing   int    `json:"missing"`
}

// Result is the output of one allocation run. Ranked preserves the
// allocation order so callers can render deterministically.
type Result struct {
	Sessions   map[string][]Session
	Ranked     []string
	Shortfalls []Shortfall
}

// DateKey normalises a time to midnight in its own location, the form
// used as calendar map key throughout the engine.
func DateKey(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b, ignoring clock time.
// Computed via civil-day ordinals so DST transitions cannot skew it.
func daysBetween(a, b time.Time) int {
	return int(dayOrdinal(b) - dayOrdinal(a))
}

func dayOrdinal(t time.Time) int64 {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).Unix() / 86400
}
