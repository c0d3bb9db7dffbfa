package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sai-prashanth/scheduler-api/internal/dto"
	"github.com/sai-prashanth/scheduler-api/internal/models"
	"github.com/sai-prashanth/scheduler-api/internal/schedule"
	appErrors "github.com/sai-prashanth/scheduler-api/pkg/errors"
	"github.com/sai-prashanth/scheduler-api/pkg/export"
)

const dateLayout = "2006-01-02"

type clientSource interface {
	List(ctx context.Context) ([]models.Client, error)
}

type busyResolver interface {
	Enabled() bool
	BusyIntervals(ctx context.Context, start, end time.Time) []schedule.BusyInterval
}

type runObserver interface {
	ObserveScheduleRun(sessions, shortfalls int, duration time.Duration)
}

// SchedulerConfig carries the calendar parameters for generation runs.
type SchedulerConfig struct {
	Granularity time.Duration
	WorkingDays []string
	DayStart    string
	DayEnd      string
	RunTTL      time.Duration
}

// SchedulerService orchestrates a generation run: load clients, resolve
// busy intervals, build the availability calendar, and allocate. Each
// run is kept in a TTL store so it can be re-fetched and exported.
type SchedulerService struct {
	clients   clientSource
	feed      busyResolver
	observer  runObserver
	validator *validator.Validate
	logger    *zap.Logger
	config    SchedulerConfig
	store     *runStore
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
}

// NewSchedulerService wires scheduler dependencies.
func NewSchedulerService(clients clientSource, feed busyResolver, observer runObserver, validate *validator.Validate, logger *zap.Logger, config SchedulerConfig) *SchedulerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.Granularity <= 0 {
		config.Granularity = schedule.DefaultGranularity
	}
	if config.RunTTL <= 0 {
		config.RunTTL = 30 * time.Minute
	}
	return &SchedulerService{
		clients:   clients,
		feed:      feed,
		observer:  observer,
		validator: validate,
		logger:    logger,
		config:    config,
		store:     newRunStore(config.RunTTL),
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
	}
}

// Generate builds a schedule for the requested date range.
func (s *SchedulerService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule generation payload")
	}

	start, err := time.ParseInLocation(dateLayout, req.StartDate, time.Local)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(dateLayout, req.EndDate, time.Local)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "endDate must not precede startDate")
	}

	gridCfg, err := s.gridConfig(req)
	if err != nil {
		return nil, err
	}

	records, err := s.clients.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clients")
	}

	prefs := make([]schedule.ClientPreference, 0, len(records))
	locations := make(map[string]string, len(records))
	for _, record := range records {
		prefs = append(prefs, toPreference(record))
		locations[record.Name] = record.Location
	}

	busy := append([]schedule.BusyInterval(nil), req.BusyIntervals...)
	if !req.SkipCalendarFeed && s.feed != nil && s.feed.Enabled() {
		busy = append(busy, s.feed.BusyIntervals(ctx, start, end)...)
	}

	began := time.Now()
	calendar := schedule.BuildCalendar(schedule.BuildGrid(start, end, gridCfg), busy)
	spans := schedule.PartitionWeeks(start, end)
	result := schedule.NewAllocator(gridCfg.Granularity, s.logger).Allocate(prefs, calendar, spans)

	resp := s.buildResponse(req, result, locations, calendar, spans, len(busy))
	s.store.Save(*resp)

	if s.observer != nil {
		s.observer.ObserveScheduleRun(len(resp.Sessions), len(resp.Shortfalls), time.Since(began))
	}
	s.logger.Info("schedule generated",
		zap.String("run_id", resp.RunID),
		zap.Int("clients", len(records)),
		zap.Int("sessions", len(resp.Sessions)),
		zap.Int("shortfalls", len(resp.Shortfalls)))
	return resp, nil
}

// GetRun fetches a previously generated run while its TTL lasts.
func (s *SchedulerService) GetRun(id string) (*dto.GenerateScheduleResponse, error) {
	run, ok := s.store.Get(id)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule run not found or expired")
	}
	return &run, nil
}

// ExportRun renders a stored run as CSV or PDF bytes.
func (s *SchedulerService) ExportRun(id, format string) ([]byte, string, error) {
	run, err := s.GetRun(id)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Date", "Weekday", "Time", "Client", "Location"},
	}
	for _, row := range run.Table {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Date":     row.Date,
			"Weekday":  row.Weekday,
			"Time":     row.Time,
			"Client":   row.Client,
			"Location": row.Location,
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, fmt.Sprintf("schedule-%s.csv", run.StartDate), nil
	case "pdf":
		title := fmt.Sprintf("Schedule %s to %s", run.StartDate, run.EndDate)
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, fmt.Sprintf("schedule-%s.pdf", run.StartDate), nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
}

func (s *SchedulerService) gridConfig(req dto.GenerateScheduleRequest) (schedule.GridConfig, error) {
	dayStart := s.config.DayStart
	if req.DayStart != "" {
		dayStart = req.DayStart
	}
	dayEnd := s.config.DayEnd
	if req.DayEnd != "" {
		dayEnd = req.DayEnd
	}

	startClock, err := schedule.ParseClockTime(dayStart)
	if err != nil {
		return schedule.GridConfig{}, appErrors.Clone(appErrors.ErrValidation, "dayStart must be HH:MM")
	}
	endClock, err := schedule.ParseClockTime(dayEnd)
	if err != nil {
		return schedule.GridConfig{}, appErrors.Clone(appErrors.ErrValidation, "dayEnd must be HH:MM")
	}

	dayNames := s.config.WorkingDays
	if len(req.WorkingDays) > 0 {
		dayNames = req.WorkingDays
	}
	working := schedule.ParseDays(strings.Join(dayNames, ", "))
	if len(working) == 0 {
		return schedule.GridConfig{}, appErrors.Clone(appErrors.ErrValidation, "workingDays must name at least one weekday")
	}

	return schedule.GridConfig{
		Granularity: s.config.Granularity,
		DayStart:    startClock,
		DayEnd:      endClock,
		WorkingDays: working,
	}, nil
}

func (s *SchedulerService) buildResponse(req dto.GenerateScheduleRequest, result schedule.Result, locations map[string]string, calendar schedule.Calendar, spans []schedule.Span, busyCount int) *dto.GenerateScheduleResponse {
	var sessions []dto.ScheduledSession
	for client, slots := range result.Sessions {
		for _, slot := range slots {
			sessions = append(sessions, dto.ScheduledSession{
				Client:   client,
				Start:    slot.Start,
				End:      slot.End,
				Duration: int(slot.End.Sub(slot.Start) / time.Minute),
			})
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Start.Equal(sessions[j].Start) {
			return sessions[i].Start.Before(sessions[j].Start)
		}
		return sessions[i].Client < sessions[j].Client
	})

	table := make([]dto.ScheduleTableRow, 0, len(sessions))
	for _, session := range sessions {
		table = append(table, dto.ScheduleTableRow{
			Date:     session.Start.Format(dateLayout),
			Weekday:  session.Start.Weekday().String(),
			Time:     fmt.Sprintf("%s - %s", session.Start.Format("15:04"), session.End.Format("15:04")),
			Client:   session.Client,
			Location: locations[session.Client],
		})
	}

	weeks := make(map[int]bool, len(spans))
	for _, span := range spans {
		weeks[span.WeekIndex] = true
	}

	return &dto.GenerateScheduleResponse{
		RunID:      uuid.NewString(),
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		Ranked:     result.Ranked,
		Sessions:   sessions,
		Table:      table,
		Shortfalls: result.Shortfalls,
		Stats: dto.ScheduleStats{
			Clients:       len(result.Ranked),
			Sessions:      len(sessions),
			FreeBlocks:    calendar.FreeBlocks(),
			BusyIntervals: busyCount,
			Weeks:         len(weeks),
		},
		GeneratedAt: time.Now().UTC(),
	}
}

// toPreference converts a stored client row into the engine's
// structured form. The text fields go through the fail-closed parsers,
// so malformed phrasing relaxes the constraint instead of erroring.
func toPreference(record models.Client) schedule.ClientPreference {
	return schedule.ClientPreference{
		Name:             record.Name,
		Email:            record.Email,
		Location:         record.Location,
		SessionDuration:  record.SessionDuration,
		WeeklySessions:   record.WeeklySessions,
		MonthlySessions:  record.MonthlySessions,
		PreferredDays:    schedule.ParseDays(record.PreferredDays),
		PreferredTimes:   schedule.ParseTimeRanges(record.PreferredTimes),
		UnavailableDates: schedule.ParseDates(record.UnavailableDates, time.Local),
	}
}

// runStore retains generation results for a bounded time so follow-up
// fetches and exports can reuse them without rerunning the engine.
type runStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]storedRun
}

type storedRun struct {
	run     dto.GenerateScheduleResponse
	savedAt time.Time
}

func newRunStore(ttl time.Duration) *runStore {
	return &runStore{ttl: ttl, items: make(map[string]storedRun)}
}

func (s *runStore) Save(run dto.GenerateScheduleResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[run.RunID] = storedRun{run: run, savedAt: time.Now()}
}

func (s *runStore) Get(id string) (dto.GenerateScheduleResponse, bool) {
	s.mu.RLock()
	item, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return dto.GenerateScheduleResponse{}, false
	}
	if time.Since(item.savedAt) > s.ttl {
		s.Delete(id)
		return dto.GenerateScheduleResponse{}, false
	}
	return item.run, true
}

func (s *runStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}
