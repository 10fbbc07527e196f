// Package domain holds DTOs for the runs http and service contracts
package domain

// RunInfo describes the active run and which artifacts it carries
type RunInfo struct {
	RunDir           string          `json:"run_dir" example:"/data/runs/20260115-101500"`
	RunID            string          `json:"run_id" example:"20260115-101500"`
	RequiredFiles    []string        `json:"required_files"`
	ArtifactsPresent map[string]bool `json:"artifacts_present"`
	MissingFiles     []string        `json:"missing_files"`
	DefaultMetric    string          `json:"default_metric" example:"check_message_count"`
	AvailableMetrics []string        `json:"available_metrics"`
	CanUpload        bool            `json:"can_upload" example:"true"`
	Timezone         string          `json:"timezone,omitempty" example:"Europe/Berlin"`
	Dataset          *DatasetRange   `json:"dataset,omitempty"`
}

// DatasetRange is the dataset date range in timezone-local dates
type DatasetRange struct {
	StartDate string `json:"start_date" example:"2024-01-01"`
	EndDate   string `json:"end_date" example:"2024-03-31"`
}

// MonthOverview is one row of the months listing
type MonthOverview struct {
	Month          string  `json:"month" example:"2024-01"`
	MessageCount   int     `json:"month_check_message_count" example:"42"`
	EventCount     int     `json:"month_check_event_count" example:"17"`
	DaysInRange    int     `json:"days_in_range" example:"31"`
	MessagesPerDay float64 `json:"messages_per_day_in_range" example:"1.354839"`
	EventsPerDay   float64 `json:"events_per_day_in_range" example:"0.548387"`
}

// MonthDetail is the month payload with a Monday-aligned week grid
type MonthDetail struct {
	Month        string             `json:"month" example:"2024-01"`
	Weeks        []string           `json:"weeks"`
	Grid         []GridCell         `json:"grid"`
	WeekdayStats []MonthWeekdayStat `json:"weekday_stats"`
}

// GridCell is one calendar cell of the month grid
type GridCell struct {
	Date          string `json:"date" example:"2024-01-15"`
	WeekStartDate string `json:"week_start_date" example:"2024-01-15"`
	WeekdayIdx    int    `json:"weekday_idx" example:"0"`
	Weekday       string `json:"weekday" example:"Mon"`
	InMonth       bool   `json:"in_month" example:"true"`
	InRange       bool   `json:"in_range" example:"true"`
	MessageCount  int    `json:"check_message_count" example:"3"`
	EventCount    int    `json:"check_event_count" example:"1"`
}

// MonthWeekdayStat is one weekday mean row inside a month payload
type MonthWeekdayStat struct {
	Month        string  `json:"month" example:"2024-01"`
	WeekdayIdx   int     `json:"weekday_idx" example:"0"`
	Weekday      string  `json:"weekday" example:"Mon"`
	Occurrences  int     `json:"weekday_occurrences_in_range" example:"5"`
	MessageCount int     `json:"check_message_count" example:"9"`
	EventCount   int     `json:"check_event_count" example:"4"`
	MeanMessages float64 `json:"mean_messages_per_weekday_in_range" example:"1.8"`
	MeanEvents   float64 `json:"mean_events_per_weekday_in_range" example:"0.8"`
}

// WeekDetail is the week payload with seven dense days
type WeekDetail struct {
	WeekStartDate string    `json:"week_start_date" example:"2024-01-15"`
	Days          []WeekDay `json:"days"`
}

// WeekDay is one day of a week payload including all 24 hours
type WeekDay struct {
	Date         string     `json:"date" example:"2024-01-15"`
	WeekdayIdx   int        `json:"weekday_idx" example:"0"`
	Weekday      string     `json:"weekday" example:"Mon"`
	MessageCount int        `json:"check_message_count" example:"3"`
	EventCount   int        `json:"check_event_count" example:"1"`
	Hours        []HourCell `json:"hours"`
}

// HourCell is one hour cell of a week day
type HourCell struct {
	Hour         int `json:"hour" example:"9"`
	MessageCount int `json:"check_message_count" example:"2"`
	EventCount   int `json:"check_event_count" example:"1"`
}

// TopLine is one row of the line leaderboard
type TopLine struct {
	LineID      string `json:"line_id" example:"10"`
	ModeGuess   string `json:"mode_guess" example:"tram"`
	EventCount  int    `json:"event_count" example:"12"`
	TotalWeight int    `json:"total_weight" example:"19"`
	LastSeen    string `json:"last_seen" example:"2024-03-30"`
}

// UploadResult reports a finished upload-and-analyze round trip
type UploadResult struct {
	RunDir           string          `json:"run_dir"`
	RunID            string          `json:"run_id"`
	BytesWritten     int64           `json:"bytes_written" example:"104857"`
	ArtifactsPresent map[string]bool `json:"artifacts_present"`
	MissingFiles     []string        `json:"missing_files"`
}
