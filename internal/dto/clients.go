package dto

// ClientIntakeRow is one parsed CSV row before preference extraction.
type ClientIntakeRow struct {
	Name             string `json:"name" validate:"required"`
	Email            string `json:"email" validate:"omitempty,email"`
	Location         string `json:"location"`
	SessionDuration  int    `json:"session_duration" validate:"required,min=15"`
	WeeklySessions   int    `json:"weekly_sessions" validate:"required,min=1"`
	MonthlySessions  int    `json:"monthly_sessions" validate:"omitempty,min=0"`
	PreferredDays    string `json:"preferred_days"`
	PreferredTimes   string `json:"preferred_times"`
	UnavailableDates string `json:"unavailable_dates"`
}

// ImportClientsResponse summarises a CSV intake.
type ImportClientsResponse struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}
