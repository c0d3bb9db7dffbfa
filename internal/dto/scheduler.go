package dto

import (
	"time"

	"github.com/sai-prashanth/scheduler-api/internal/schedule"
)

// GenerateScheduleRequest instructs the engine to build a schedule for
// the inclusive date range. Working window fields override the
// configured defaults when present.
type GenerateScheduleRequest struct {
	StartDate        string                  `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate          string                  `json:"endDate" validate:"required,datetime=2006-01-02"`
	WorkingDays      []string                `json:"workingDays" validate:"omitempty,min=1,dive,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	DayStart         string                  `json:"dayStart" validate:"omitempty,datetime=15:04"`
	DayEnd           string                  `json:"dayEnd" validate:"omitempty,datetime=15:04"`
	BusyIntervals    []schedule.BusyInterval `json:"busyIntervals"`
	SkipCalendarFeed bool                    `json:"skipCalendarFeed"`
}

// ScheduledSession is one booked appointment in the response.
type ScheduledSession struct {
	Client   string    `json:"client"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Duration int       `json:"durationMinutes"`
}

// ScheduleTableRow is the flattened per-day rendering used by exports.
type ScheduleTableRow struct {
	Date     string `json:"date"`
	Weekday  string `json:"weekday"`
	Time     string `json:"time"`
	Client   string `json:"client"`
	Location string `json:"location,omitempty"`
}

// ScheduleStats summarises an allocation run.
type ScheduleStats struct {
	Clients       int `json:"clients"`
	Sessions      int `json:"sessions"`
	FreeBlocks    int `json:"freeBlocks"`
	BusyIntervals int `json:"busyIntervals"`
	Weeks         int `json:"weeks"`
}

// GenerateScheduleResponse returns the built schedule.
type GenerateScheduleResponse struct {
	RunID       string                `json:"runId"`
	StartDate   string                `json:"startDate"`
	EndDate     string                `json:"endDate"`
	Ranked      []string              `json:"ranked"`
	Sessions    []ScheduledSession    `json:"sessions"`
	Table       []ScheduleTableRow    `json:"table"`
	Shortfalls  []schedule.Shortfall  `json:"shortfalls"`
	Stats       ScheduleStats         `json:"stats"`
	GeneratedAt time.Time             `json:"generatedAt"`
}
