package schedule

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// relaxedWindow is the pass-2 time window covering the whole day.
var relaxedWindow = []HourRange{{Start: 0, End: 24}}

// Allocator books sessions into a Calendar using a first-fit greedy
// strategy. It never backtracks: once a higher-ranked client holds a
// block the decision is final for the run.
type Allocator struct {
	granularity time.Duration
	logger      *zap.Logger
}

// NewAllocator constructs an allocator for the given grid granularity.
func NewAllocator(granularity time.Duration, logger *zap.Logger) *Allocator {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Allocator{granularity: granularity, logger: logger}
}

// Rank orders clients by priority score (duration x weekly sessions)
// descending. The sort is stable: equal scores keep their original
// input order, which makes contested-block outcomes deterministic.
func Rank(clients []ClientPreference) []ClientPreference {
	ranked := make([]ClientPreference, len(clients))
	copy(ranked, clients)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority() > ranked[j].Priority()
	})
	return ranked
}

// Allocate walks ranked clients through the week spans, booking up to
// WeeklySessions per week bucket and at most one session per calendar
// date per client. Quota that cannot be placed is reported as a
// shortfall, never as an error: the result always contains an entry
// (possibly empty) for every client.
func (a *Allocator) Allocate(clients []ClientPreference, calendar Calendar, spans []Span) Result {
	result := Result{
		Sessions: make(map[string][]Session, len(clients)),
		Ranked:   make([]string, 0, len(clients)),
	}

	for _, client := range Rank(clients) {
		result.Ranked = append(result.Ranked, client.Name)
		if _, ok := result.Sessions[client.Name]; !ok {
			result.Sessions[client.Name] = []Session{}
		}

		numBlocks, ok := a.blocksPerSession(client)
		if !ok {
			a.logger.Warn("session duration not aligned to grid",
				zap.String("client", client.Name),
				zap.Int("duration_minutes", client.SessionDuration))
			continue
		}

		consumed := make(map[int]int, len(spans))
		for _, span := range spans {
			a.allocateSpan(client, span, calendar, numBlocks, consumed, &result)
		}

		reported := make(map[int]bool, len(spans))
		for _, span := range spans {
			if reported[span.WeekIndex] {
				continue
			}
			reported[span.WeekIndex] = true
			if missing := client.WeeklySessions - consumed[span.WeekIndex]; missing > 0 {
				result.Shortfalls = append(result.Shortfalls, Shortfall{
					Client:    client.Name,
					WeekIndex: span.WeekIndex,
					Missing:   missing,
				})
			}
		}
	}

	return result
}

// allocateSpan runs the two-pass relaxation over one span: pass 1
// restricts runs to the client's preferred hour ranges, pass 2 accepts
// any time of day. Dates are visited preferred-weekdays-first, then
// chronologically; a date yields at most one session per span.
func (a *Allocator) allocateSpan(client ClientPreference, span Span, calendar Calendar, numBlocks int, consumed map[int]int, result *Result) {
	sessionsLeft := client.WeeklySessions - consumed[span.WeekIndex]
	if sessionsLeft <= 0 {
		return
	}

	dates := span.Dates()
	sort.SliceStable(dates, func(i, j int) bool {
		return client.PreferredDays[dates[i].Weekday()] && !client.PreferredDays[dates[j].Weekday()]
	})

	used := make(map[time.Time]bool)
	for _, window := range [][]HourRange{client.PreferredTimes, relaxedWindow} {
		for _, date := range dates {
			if sessionsLeft <= 0 {
				return
			}
			if client.UnavailableDates[date] || used[date] {
				continue
			}

			blocks := calendar[date]
			start := findRun(blocks, numBlocks, window)
			if start < 0 {
				continue
			}

			for i := start; i < start+numBlocks; i++ {
				blocks[i].Booked = true
			}
			result.Sessions[client.Name] = append(result.Sessions[client.Name], Session{
				Start: blocks[start].Start,
				End:   blocks[start+numBlocks-1].End,
			})
			used[date] = true
			consumed[span.WeekIndex]++
			sessionsLeft--
		}
	}
}

func (a *Allocator) blocksPerSession(client ClientPreference) (int, bool) {
	step := int(a.granularity / time.Minute)
	if step <= 0 || client.SessionDuration <= 0 || client.SessionDuration%step != 0 {
		return 0, false
	}
	return client.SessionDuration / step, true
}

// findRun locates the first run of numBlocks contiguous unbooked blocks
// whose hour span fits inside at least one of the given ranges, or -1.
// An empty range list matches nothing, which is what routes clients
// without time preferences to the relaxed pass.
func findRun(blocks []Block, numBlocks int, ranges []HourRange) int {
	if numBlocks <= 0 {
		return -1
	}
	for i := 0; i+numBlocks <= len(blocks); i++ {
		if runFits(blocks, i, numBlocks, ranges) {
			return i
		}
	}
	return -1
}

func runFits(blocks []Block, start, numBlocks int, ranges []HourRange) bool {
	startHour := blocks[start].Start.Hour()
	endHour := blocks[start+numBlocks-1].End.Hour()

	inWindow := false
	for _, r := range ranges {
		if startHour >= r.Start && endHour <= r.End {
			inWindow = true
			break
		}
	}
	if !inWindow {
		return false
	}

	for i := start; i < start+numBlocks; i++ {
		if blocks[i].Booked {
			return false
		}
		if i > start && !blocks[i].Start.Equal(blocks[i-1].End) {
			return false
		}
	}
	return true
}
