package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ical "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/sai-prashanth/scheduler-api/internal/schedule"
)

type busyCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// FeedConfig points at the external ICS busy feed.
type FeedConfig struct {
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// FeedService fetches the operator's ICS calendar feed and converts its
// events into busy intervals clamped to a scheduling range. Parsed
// feeds are cached so repeated generations within the TTL do not hit
// the remote calendar.
type FeedService struct {
	client *http.Client
	cache  busyCache
	logger *zap.Logger
	config FeedConfig
}

// NewFeedService constructs a FeedService.
func NewFeedService(client *http.Client, cache busyCache, logger *zap.Logger, config FeedConfig) *FeedService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	if config.CacheTTL <= 0 {
		config.CacheTTL = 10 * time.Minute
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &FeedService{client: client, cache: cache, logger: logger, config: config}
}

// Enabled reports whether a feed URL is configured.
func (s *FeedService) Enabled() bool {
	return s.config.URL != ""
}

// BusyIntervals returns feed events overlapping [start, end] as busy
// intervals in local time. Feed failures degrade to an empty interval
// list with a warning; an unreachable calendar must not block runs.
func (s *FeedService) BusyIntervals(ctx context.Context, start, end time.Time) []schedule.BusyInterval {
	if !s.Enabled() {
		return nil
	}

	intervals, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("calendar feed unavailable", zap.Error(err))
		return nil
	}

	rangeStart := schedule.DateKey(start)
	rangeEnd := schedule.DateKey(end).AddDate(0, 0, 1)

	var clamped []schedule.BusyInterval
	for _, interval := range intervals {
		if !interval.Start.Before(rangeEnd) || !interval.End.After(rangeStart) {
			continue
		}
		clamped = append(clamped, schedule.BusyInterval{
			Start: interval.Start.In(time.Local),
			End:   interval.End.In(time.Local),
		})
	}
	return clamped
}

func (s *FeedService) fetch(ctx context.Context) ([]schedule.BusyInterval, error) {
	cacheKey := "scheduler:busyfeed:" + s.config.URL

	if s.cache != nil {
		var cached []schedule.BusyInterval
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch calendar feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar feed status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, 8<<20)
	intervals, err := parseBusyFeed(body)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, intervals, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache calendar feed", zap.Error(err))
		}
	}
	return intervals, nil
}

// parseBusyFeed extracts event intervals from an ICS document. Events
// without both DTSTART and DTEND are skipped.
func parseBusyFeed(r io.Reader) ([]schedule.BusyInterval, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse ics feed: %w", err)
	}

	var intervals []schedule.BusyInterval
	for _, event := range cal.Events() {
		start, err := event.GetStartAt()
		if err != nil {
			continue
		}
		end, err := event.GetEndAt()
		if err != nil {
			continue
		}
		if !end.After(start) {
			continue
		}
		intervals = append(intervals, schedule.BusyInterval{Start: start, End: end})
	}
	return intervals, nil
}
