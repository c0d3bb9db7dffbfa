package models

import "time"

// Client represents a scheduling client stored in the clients table.
// The preference columns hold the free-text phrasing as imported; they
// are parsed into structured constraints at scheduling time so a failed
// parse never blocks intake.
type Client struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Email            string    `db:"email" json:"email"`
	Location         string    `db:"location" json:"location"`
	SessionDuration  int       `db:"session_duration" json:"session_duration"`
	WeeklySessions   int       `db:"weekly_sessions" json:"weekly_sessions"`
	MonthlySessions  int       `db:"monthly_sessions" json:"monthly_sessions"`
	PreferredDays    string    `db:"preferred_days" json:"preferred_days"`
	PreferredTimes   string    `db:"preferred_times" json:"preferred_times"`
	UnavailableDates string    `db:"unavailable_dates" json:"unavailable_dates"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ClientFilter captures filtering criteria for listing clients.
type ClientFilter struct {
	Search   string
	Page     int
	PageSize int
}
