// Package artifact reads finished run directories back into typed rows.
// The analyze service writes these files; the API serves them.
package artifact

import (
	"encoding/csv"
	"encoding/json/v2"
	"os"
	"path/filepath"
	"strconv"

	"checkstats/internal/platform/errors"
)

// RequiredUIFiles are the artifacts the web API needs before it can serve
// calendar payloads for a run
var RequiredUIFiles = []string{
	"run_metadata.json",
	"derived/ui/month_counts.csv",
	"derived/ui/day_counts.csv",
	"derived/ui/day_hour_counts.csv",
	"derived/ui/month_weekday_stats.csv",
	"derived/ui/calendar_day_index.csv",
}

// Presence reports which required files exist under runDir
func Presence(runDir string) (present map[string]bool, missing []string) {
	present = make(map[string]bool, len(RequiredUIFiles))
	for _, rel := range RequiredUIFiles {
		_, err := os.Stat(filepath.Join(runDir, filepath.FromSlash(rel)))
		ok := err == nil
		present[rel] = ok
		if !ok {
			missing = append(missing, rel)
		}
	}
	return present, missing
}

// Metadata is the subset of run_metadata.json the API consumes
type Metadata struct {
	Config struct {
		Timezone string `json:"timezone"`
	} `json:"config"`
	Dataset struct {
		StartBerlinDate string `json:"start_berlin_date"`
		EndBerlinDate   string `json:"end_berlin_date"`
		TotalDays       int    `json:"total_days_in_range"`
	} `json:"dataset"`
}

// ReadMetadata loads run_metadata.json from a run directory
func ReadMetadata(runDir string) (Metadata, error) {
	var md Metadata
	raw, err := os.ReadFile(filepath.Join(runDir, "run_metadata.json"))
	if err != nil {
		return md, errors.Wrap(err, errors.ErrorCodeNotFound, "run metadata missing")
	}
	if err := json.Unmarshal(raw, &md); err != nil {
		return md, errors.Wrap(err, errors.ErrorCodeJSON, "run metadata unreadable")
	}
	if md.Dataset.StartBerlinDate == "" || md.Dataset.EndBerlinDate == "" {
		return md, errors.InvalidArgf("run metadata missing dataset range")
	}
	return md, nil
}

// MonthRow is one month overview row
type MonthRow struct {
	Month          string
	MessageCount   int
	EventCount     int
	DaysInRange    int
	MessagesPerDay float64
	EventsPerDay   float64
}

// DayRow is one dense calendar day row
type DayRow struct {
	Date          string
	Month         string
	WeekdayIdx    int
	Weekday       string
	ISOYear       int
	ISOWeek       int
	WeekStartDate string
	WeekOfMonth   int
	MessageCount  int
	EventCount    int
}

// DayHourRow is one sparse (date, hour) cell
type DayHourRow struct {
	Date         string
	Hour         int
	MessageCount int
	EventCount   int
}

// MonthWeekdayRow is one month-by-weekday mean row
type MonthWeekdayRow struct {
	Month        string
	WeekdayIdx   int
	Weekday      string
	Occurrences  int
	MessageCount int
	EventCount   int
	MeanMessages float64
	MeanEvents   float64
}

// EventRow is the slice of an events.csv row the API needs
type EventRow struct {
	EventID    string
	DateBerlin string
	Hour       int
	WeekdayIdx int
	LineID     string
	ModeGuess  string
	MatchType  string
	Weight     int
}

// ReadMonthCounts loads derived/ui/month_counts.csv
func ReadMonthCounts(runDir string) ([]MonthRow, error) {
	recs, err := readTable(runDir, "derived/ui/month_counts.csv")
	if err != nil {
		return nil, err
	}
	out := make([]MonthRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, MonthRow{
			Month:          rec["month"],
			MessageCount:   atoi(rec["month_check_message_count"]),
			EventCount:     atoi(rec["month_check_event_count"]),
			DaysInRange:    atoi(rec["days_in_range"]),
			MessagesPerDay: atof(rec["messages_per_day_in_range"]),
			EventsPerDay:   atof(rec["events_per_day_in_range"]),
		})
	}
	return out, nil
}

// ReadDayCounts loads derived/ui/day_counts.csv
func ReadDayCounts(runDir string) ([]DayRow, error) {
	recs, err := readTable(runDir, "derived/ui/day_counts.csv")
	if err != nil {
		return nil, err
	}
	out := make([]DayRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, DayRow{
			Date:          rec["date"],
			Month:         rec["month"],
			WeekdayIdx:    atoi(rec["weekday_idx"]),
			Weekday:       rec["weekday"],
			ISOYear:       atoi(rec["iso_year"]),
			ISOWeek:       atoi(rec["iso_week"]),
			WeekStartDate: rec["week_start_date"],
			WeekOfMonth:   atoi(rec["week_of_month"]),
			MessageCount:  atoi(rec["check_message_count"]),
			EventCount:    atoi(rec["check_event_count"]),
		})
	}
	return out, nil
}

// ReadDayHourCounts loads derived/ui/day_hour_counts.csv
func ReadDayHourCounts(runDir string) ([]DayHourRow, error) {
	recs, err := readTable(runDir, "derived/ui/day_hour_counts.csv")
	if err != nil {
		return nil, err
	}
	out := make([]DayHourRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, DayHourRow{
			Date:         rec["date"],
			Hour:         atoi(rec["hour"]),
			MessageCount: atoi(rec["check_message_count"]),
			EventCount:   atoi(rec["check_event_count"]),
		})
	}
	return out, nil
}

// ReadMonthWeekdayStats loads derived/ui/month_weekday_stats.csv
func ReadMonthWeekdayStats(runDir string) ([]MonthWeekdayRow, error) {
	recs, err := readTable(runDir, "derived/ui/month_weekday_stats.csv")
	if err != nil {
		return nil, err
	}
	out := make([]MonthWeekdayRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, MonthWeekdayRow{
			Month:        rec["month"],
			WeekdayIdx:   atoi(rec["weekday_idx"]),
			Weekday:      rec["weekday"],
			Occurrences:  atoi(rec["weekday_occurrences_in_range"]),
			MessageCount: atoi(rec["check_message_count"]),
			EventCount:   atoi(rec["check_event_count"]),
			MeanMessages: atof(rec["mean_messages_per_weekday_in_range"]),
			MeanEvents:   atof(rec["mean_events_per_weekday_in_range"]),
		})
	}
	return out, nil
}

// ReadEvents loads derived/events.csv
func ReadEvents(runDir string) ([]EventRow, error) {
	recs, err := readTable(runDir, "derived/events.csv")
	if err != nil {
		return nil, err
	}
	out := make([]EventRow, 0, len(recs))
	for _, rec := range recs {
		out = append(out, EventRow{
			EventID:    rec["event_id"],
			DateBerlin: rec["date_berlin"],
			Hour:       atoi(rec["hour"]),
			WeekdayIdx: atoi(rec["weekday_idx"]),
			LineID:     rec["line_id"],
			ModeGuess:  rec["mode_guess"],
			MatchType:  rec["match_type"],
			Weight:     atoi(rec["event_weight"]),
		})
	}
	return out, nil
}

// readTable reads a headered CSV into header-keyed records
func readTable(runDir, rel string) ([]map[string]string, error) {
	f, err := os.Open(filepath.Join(runDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorCodeNotFound, "artifact %s missing", rel)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorCodeInvalidArgument, "artifact %s unreadable", rel)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atof(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
