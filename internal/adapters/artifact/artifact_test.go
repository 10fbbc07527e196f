package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"checkstats/internal/platform/errors"
)

func writeFixtureRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ui := filepath.Join(dir, "derived", "ui")
	if err := os.MkdirAll(ui, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files := map[string]string{
		"run_metadata.json": `{
  "config": {"timezone": "Europe/Berlin"},
  "dataset": {"start_berlin_date": "2024-01-01", "end_berlin_date": "2024-01-15", "total_days_in_range": 15}
}
`,
		"derived/ui/month_counts.csv": "month,month_check_message_count,month_check_event_count,days_in_range,messages_per_day_in_range,events_per_day_in_range\n" +
			"2024-01,3,2,15,0.2,0.133333\n",
		"derived/ui/day_counts.csv": "date,check_message_count,check_event_count,month,weekday_idx,weekday,iso_year,iso_week,week_start_date,week_of_month\n" +
			"2024-01-01,2,1,2024-01,0,Mon,2024,1,2024-01-01,1\n" +
			"2024-01-02,0,0,2024-01,1,Tue,2024,1,2024-01-01,1\n",
		"derived/ui/day_hour_counts.csv": "date,hour,check_message_count,check_event_count\n" +
			"2024-01-01,10,2,1\n",
		"derived/ui/month_weekday_stats.csv": "month,weekday_idx,weekday,weekday_occurrences_in_range,check_message_count,check_event_count,mean_messages_per_weekday_in_range,mean_events_per_weekday_in_range\n" +
			"2024-01,0,Mon,3,2,1,0.666667,0.333333\n",
		"derived/events.csv": "event_id,message_id,date_berlin,weekday_idx,hour,match_type,event_weight,line_id,mode_guess\n" +
			"evt-1,1,2024-01-01,0,10,k_token,2,10,tram\n" +
			"evt-2,2,2024-01-08,0,10,keyword,1,10,tram\n",
	}
	for rel, body := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return dir
}

func TestPresence(t *testing.T) {
	dir := writeFixtureRun(t)

	present, missing := Presence(dir)
	if len(missing) != 1 || missing[0] != "derived/ui/calendar_day_index.csv" {
		t.Fatalf("missing = %v", missing)
	}
	if !present["run_metadata.json"] || present["derived/ui/calendar_day_index.csv"] {
		t.Fatalf("presence map wrong: %v", present)
	}
}

func TestReadMetadata(t *testing.T) {
	dir := writeFixtureRun(t)

	md, err := ReadMetadata(dir)
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if md.Config.Timezone != "Europe/Berlin" {
		t.Fatalf("timezone = %q", md.Config.Timezone)
	}
	if md.Dataset.StartBerlinDate != "2024-01-01" || md.Dataset.EndBerlinDate != "2024-01-15" {
		t.Fatalf("dataset range = %+v", md.Dataset)
	}
	if md.Dataset.TotalDays != 15 {
		t.Fatalf("total days = %d", md.Dataset.TotalDays)
	}
}

func TestReadMetadata_Missing(t *testing.T) {
	_, err := ReadMetadata(t.TempDir())
	if !errors.IsCode(err, errors.ErrorCodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestReadTables(t *testing.T) {
	dir := writeFixtureRun(t)

	months, err := ReadMonthCounts(dir)
	if err != nil || len(months) != 1 {
		t.Fatalf("months = %v, err = %v", months, err)
	}
	if months[0].Month != "2024-01" || months[0].MessageCount != 3 || months[0].EventsPerDay != 0.133333 {
		t.Fatalf("month row = %+v", months[0])
	}

	days, err := ReadDayCounts(dir)
	if err != nil || len(days) != 2 {
		t.Fatalf("days = %v, err = %v", days, err)
	}
	if days[0].Date != "2024-01-01" || days[0].WeekdayIdx != 0 || days[0].WeekStartDate != "2024-01-01" {
		t.Fatalf("day row = %+v", days[0])
	}

	cells, err := ReadDayHourCounts(dir)
	if err != nil || len(cells) != 1 || cells[0].Hour != 10 || cells[0].EventCount != 1 {
		t.Fatalf("day hour rows = %v, err = %v", cells, err)
	}

	stats, err := ReadMonthWeekdayStats(dir)
	if err != nil || len(stats) != 1 || stats[0].Occurrences != 3 {
		t.Fatalf("weekday stats = %v, err = %v", stats, err)
	}

	events, err := ReadEvents(dir)
	if err != nil || len(events) != 2 {
		t.Fatalf("events = %v, err = %v", events, err)
	}
	if events[0].EventID != "evt-1" || events[0].LineID != "10" || events[0].ModeGuess != "tram" || events[0].Weight != 2 {
		t.Fatalf("event row = %+v", events[0])
	}
}

func TestReadTables_MissingFile(t *testing.T) {
	_, err := ReadEvents(t.TempDir())
	if !errors.IsCode(err, errors.ErrorCodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}
