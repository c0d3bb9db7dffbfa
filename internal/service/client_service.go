package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sai-prashanth/scheduler-api/internal/dto"
	"github.com/sai-prashanth/scheduler-api/internal/models"
	appErrors "github.com/sai-prashanth/scheduler-api/pkg/errors"
)

type clientStore interface {
	Upsert(ctx context.Context, client *models.Client) error
	List(ctx context.Context) ([]models.Client, error)
	Search(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
}

type preferenceExtractor interface {
	Enabled() bool
	Extract(ctx context.Context, note string) (*ExtractedPreferences, error)
}

// ClientService handles CSV intake and client listing.
type ClientService struct {
	repo      clientStore
	extractor preferenceExtractor
	validator *validator.Validate
	logger    *zap.Logger
	maxBatch  int
}

// NewClientService constructs a ClientService.
func NewClientService(repo clientStore, extractor preferenceExtractor, validate *validator.Validate, logger *zap.Logger, maxBatch int) *ClientService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBatch <= 0 {
		maxBatch = 30
	}
	return &ClientService{repo: repo, extractor: extractor, validator: validate, logger: logger, maxBatch: maxBatch}
}

// ImportCSV ingests a client roster. The header row is matched by
// normalised column name, so "Session Duration" and "session_duration"
// are equivalent. A free-text "preferences" column is run through the
// extraction model when structured preference columns are empty. Rows
// that fail validation are skipped and reported, not fatal.
func (s *ClientService) ImportCSV(ctx context.Context, r io.Reader) (*dto.ImportClientsResponse, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to read csv header")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[normalizeColumn(name)] = i
	}
	if _, ok := columns["name"]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "csv is missing a name column")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "malformed csv body")
	}
	if len(records) > s.maxBatch {
		return nil, appErrors.Clone(appErrors.ErrTooManyClients,
			fmt.Sprintf("csv contains %d rows, the supported maximum is %d", len(records), s.maxBatch))
	}

	resp := &dto.ImportClientsResponse{}
	for i, record := range records {
		row := s.buildRow(ctx, columns, record)
		if err := s.validator.Struct(row); err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d (%s): %v", i+1, row.Name, err))
			continue
		}

		client := &models.Client{
			Name:             row.Name,
			Email:            row.Email,
			Location:         row.Location,
			SessionDuration:  row.SessionDuration,
			WeeklySessions:   row.WeeklySessions,
			MonthlySessions:  row.MonthlySessions,
			PreferredDays:    row.PreferredDays,
			PreferredTimes:   row.PreferredTimes,
			UnavailableDates: row.UnavailableDates,
		}
		if client.Email == "" {
			client.Email = syntheticEmail(client.Name)
		}
		if err := s.repo.Upsert(ctx, client); err != nil {
			resp.Skipped++
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %d (%s): %v", i+1, row.Name, err))
			continue
		}
		resp.Imported++
	}

	s.logger.Info("client csv imported",
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped))
	return resp, nil
}

// List returns clients matching the filter.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	clients, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list clients")
	}
	return clients, total, nil
}

func (s *ClientService) buildRow(ctx context.Context, columns map[string]int, record []string) dto.ClientIntakeRow {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}
	number := func(name string) int {
		value, err := strconv.Atoi(field(name))
		if err != nil {
			return 0
		}
		return value
	}

	row := dto.ClientIntakeRow{
		Name:             field("name"),
		Email:            strings.ToLower(field("email")),
		Location:         field("location"),
		SessionDuration:  number("session_duration"),
		WeeklySessions:   number("weekly_sessions"),
		MonthlySessions:  number("monthly_sessions"),
		PreferredDays:    field("preferred_days"),
		PreferredTimes:   field("preferred_times"),
		UnavailableDates: field("unavailable_dates"),
	}

	note := field("preferences")
	if note == "" {
		note = field("notes")
	}
	if note != "" && s.extractor != nil && s.extractor.Enabled() {
		extracted, err := s.extractor.Extract(ctx, note)
		if err != nil {
			s.logger.Warn("preference extraction failed, keeping structured columns",
				zap.String("client", row.Name), zap.Error(err))
			return row
		}
		if row.PreferredDays == "" {
			row.PreferredDays = extracted.PreferredDays
		}
		if row.PreferredTimes == "" {
			row.PreferredTimes = extracted.PreferredTimes
		}
		if row.UnavailableDates == "" {
			row.UnavailableDates = extracted.UnavailableDates
		}
		if row.SessionDuration == 0 {
			row.SessionDuration = int(extracted.SessionDuration)
		}
		if row.WeeklySessions == 0 {
			row.WeeklySessions = int(extracted.WeeklySessions)
		}
		if row.MonthlySessions == 0 {
			row.MonthlySessions = int(extracted.MonthlySessions)
		}
	}
	return row
}

func normalizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "\uFEFF")
	return strings.ReplaceAll(name, " ", "_")
}

// syntheticEmail keeps the email uniqueness constraint satisfied for
// rosters that omit addresses.
func syntheticEmail(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.ReplaceAll(slug, " ", ".")
	return slug + "@clients.local"
}
