package service

import (
	"encoding/csv"
	"encoding/json/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"checkstats/internal/core/bucket"
	"checkstats/internal/services/analyze/domain"
)

// sortEvents orders events the way events.csv is keyed: by the formatted UTC
// timestamp, then message id
func sortEvents(events []*domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, tj := formatUTCZ(events[i].TimestampUTC), formatUTCZ(events[j].TimestampUTC)
		if ti != tj {
			return ti < tj
		}
		return events[i].MessageID < events[j].MessageID
	})
}

// writeArtifacts writes every derived CSV under <outDir>/derived and the UI
// contract under <outDir>/derived/ui
func writeArtifacts(outDir string, start, end bucket.Date, events []*domain.Event, tally *bucket.Tally) error {
	derived := filepath.Join(outDir, "derived")
	ui := filepath.Join(derived, "ui")

	if err := writeEventsCSV(filepath.Join(derived, "events.csv"), events); err != nil {
		return err
	}

	dailyRows := bucket.BuildDailyRows(start, end, tally.Daily)
	rows := make([][]string, 0, len(dailyRows))
	for _, r := range dailyRows {
		rows = append(rows, []string{r.Date.String(), itoa(r.Messages), itoa(r.Events)})
	}
	if err := writeCSV(filepath.Join(derived, "daily_counts.csv"),
		[]string{"date_berlin", "check_message_count", "check_event_count"}, rows); err != nil {
		return err
	}

	weekdayRows := bucket.BuildWeekdayRows(start, end, tally.Weekday)
	rows = rows[:0]
	for _, r := range weekdayRows {
		rows = append(rows, []string{
			r.Weekday, itoa(r.WeekdayIdx), itoa(r.Messages), itoa(r.Events),
			itoa(r.Occurrences), pyFloat(r.MeanMessages), pyFloat(r.MeanEvents),
		})
	}
	if err := writeCSV(filepath.Join(derived, "weekday_counts.csv"),
		[]string{
			"weekday", "weekday_idx", "check_message_count", "check_event_count",
			"weekday_occurrences", "mean_messages_per_weekday", "mean_events_per_weekday",
		}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range bucket.BuildHourRows(tally.Hour) {
		rows = append(rows, []string{itoa(r.Hour), itoa(r.Messages), itoa(r.Events)})
	}
	if err := writeCSV(filepath.Join(derived, "hour_counts.csv"),
		[]string{"hour", "check_message_count", "check_event_count"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range bucket.BuildWeekdayHourRows(tally.WeekdayHour) {
		rows = append(rows, []string{r.Weekday, itoa(r.WeekdayIdx), itoa(r.Hour), itoa(r.Messages), itoa(r.Events)})
	}
	if err := writeCSV(filepath.Join(derived, "weekday_hour_counts.csv"),
		[]string{"weekday", "weekday_idx", "hour", "check_message_count", "check_event_count"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range bucket.BuildWeekOfMonthRows(tally.WeekOfMonth) {
		rows = append(rows, []string{itoa(r.Week), itoa(r.Messages), itoa(r.Events)})
	}
	if err := writeCSV(filepath.Join(derived, "week_of_month_counts.csv"),
		[]string{"week_of_month_simple", "check_message_count", "check_event_count"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range bucket.BuildMonthWeekRows(tally.MonthWeek) {
		rows = append(rows, []string{r.Month, itoa(r.Week), itoa(r.Messages), itoa(r.Events)})
	}
	if err := writeCSV(filepath.Join(derived, "month_week_of_month_counts.csv"),
		[]string{"month", "week_of_month_simple", "check_message_count", "check_event_count"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range bucket.BuildISOWeekRows(start, end, tally.ISOWeek) {
		rows = append(rows, []string{
			itoa(r.ISOYear), itoa(r.ISOWeek), r.WeekStart.String(),
			itoa(r.DaysInRange), pyBool(r.Partial), itoa(r.Messages), itoa(r.Events),
		})
	}
	if err := writeCSV(filepath.Join(derived, "iso_week_counts.csv"),
		[]string{
			"iso_year", "iso_week", "iso_week_start_date_berlin",
			"days_in_week_in_range", "is_partial_week", "check_message_count", "check_event_count",
		}, rows); err != nil {
		return err
	}

	monthRows := bucket.BuildMonthRows(start, end, tally.Month)
	rows = rows[:0]
	for _, r := range monthRows {
		rows = append(rows, []string{
			r.Month, itoa(r.Messages), itoa(r.Events), itoa(r.DaysInRange),
			pyBool(r.Partial), pyFloat(r.MessagesPerDay), pyFloat(r.EventsPerDay),
		})
	}
	if err := writeCSV(filepath.Join(derived, "month_counts_normalized.csv"),
		[]string{
			"month", "month_message_count", "month_event_count", "days_in_month_in_range",
			"is_partial_month", "messages_per_day_in_month", "events_per_day_in_month",
		}, rows); err != nil {
		return err
	}

	return writeUIArtifacts(ui, start, end, dailyRows, monthRows, tally.DayHour)
}

// writeUIArtifacts writes the chart-ready UI contract so the API server never
// has to parse events.csv or recompute calendar features
func writeUIArtifacts(
	ui string,
	start, end bucket.Date,
	dailyRows []bucket.DailyRow,
	monthRows []bucket.MonthRow,
	dayHour map[bucket.DayHourKey]bucket.Counts,
) error {
	calendarRows := bucket.BuildCalendarDayRows(start, end)
	rows := make([][]string, 0, len(calendarRows))
	for _, r := range calendarRows {
		rows = append(rows, []string{
			r.Date.String(), r.Month, itoa(r.WeekdayIdx), r.Weekday,
			itoa(r.ISOYear), itoa(r.ISOWeek), r.WeekStart.String(), itoa(r.WeekOfMonth),
		})
	}
	if err := writeCSV(filepath.Join(ui, "calendar_day_index.csv"),
		[]string{"date", "month", "weekday_idx", "weekday", "iso_year", "iso_week", "week_start_date", "week_of_month"},
		rows); err != nil {
		return err
	}

	dayRows := bucket.BuildDayCountRows(dailyRows, calendarRows)
	rows = rows[:0]
	for _, r := range dayRows {
		rows = append(rows, []string{
			r.Date.String(), itoa(r.Messages), itoa(r.Events), r.Month,
			itoa(r.WeekdayIdx), r.Weekday, itoa(r.ISOYear), itoa(r.ISOWeek),
			r.WeekStart.String(), itoa(r.WeekOfMonth),
		})
	}
	if err := writeCSV(filepath.Join(ui, "day_counts.csv"),
		[]string{
			"date", "check_message_count", "check_event_count", "month", "weekday_idx",
			"weekday", "iso_year", "iso_week", "week_start_date", "week_of_month",
		}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range monthRows {
		rows = append(rows, []string{
			r.Month, itoa(r.Messages), itoa(r.Events), itoa(r.DaysInRange),
			pyFloat(r.MessagesPerDay), pyFloat(r.EventsPerDay),
		})
	}
	if err := writeCSV(filepath.Join(ui, "month_counts.csv"),
		[]string{
			"month", "month_check_message_count", "month_check_event_count",
			"days_in_range", "messages_per_day_in_range", "events_per_day_in_range",
		}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range bucket.BuildDayHourRows(dayHour) {
		rows = append(rows, []string{r.Date.String(), itoa(r.Hour), itoa(r.Messages), itoa(r.Events)})
	}
	if err := writeCSV(filepath.Join(ui, "day_hour_counts.csv"),
		[]string{"date", "hour", "check_message_count", "check_event_count"}, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, r := range bucket.BuildMonthWeekdayStatRows(dayRows) {
		rows = append(rows, []string{
			r.Month, itoa(r.WeekdayIdx), r.Weekday, itoa(r.Occurrences),
			itoa(r.Messages), itoa(r.Events), pyFloat(r.MeanMessages), pyFloat(r.MeanEvents),
		})
	}
	return writeCSV(filepath.Join(ui, "month_weekday_stats.csv"),
		[]string{
			"month", "weekday_idx", "weekday", "weekday_occurrences_in_range",
			"check_message_count", "check_event_count",
			"mean_messages_per_weekday_in_range", "mean_events_per_weekday_in_range",
		}, rows)
}

var eventFieldnames = []string{
	"event_id", "message_id", "timestamp_utc", "timestamp_berlin", "date_berlin",
	"weekday", "weekday_idx", "iso_year", "iso_week", "month", "time_berlin",
	"hour", "week_of_month_simple", "match_type", "event_weight",
	"matched_k_values", "matched_keywords", "k_token_hit_count", "confidence_score",
	"k_min", "k_max", "k_qualifier", "control_keyword_hit", "control_keyword_forms",
	"line_id", "mode_guess", "line_validated", "line_confidence",
	"direction_text", "direction_polarity", "location_text", "platform_text",
	"stitched_message_ids", "text_trunc", "text_len", "text_sha256",
}

func writeEventsCSV(path string, events []*domain.Event) error {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		cal := bucket.CalendarOf(e.TimestampBerlin)
		kMin, kMax := "", ""
		if e.KBounded {
			kMin, kMax = itoa(e.KMin), itoa(e.KMax)
		}
		rows = append(rows, []string{
			e.EventID,
			itoa64(e.MessageID),
			formatUTCZ(e.TimestampUTC),
			formatOffset(e.TimestampBerlin),
			cal.Date.String(),
			cal.Weekday,
			itoa(cal.WeekdayIdx),
			itoa(cal.ISOYear),
			itoa(cal.ISOWeek),
			cal.MonthLabel,
			e.TimestampBerlin.Format("15:04:05"),
			itoa(cal.Hour),
			itoa(cal.WeekOfMonth),
			string(e.MatchType),
			itoa(e.EventWeight),
			jsonInts(e.MatchedKValues),
			jsonStrings(e.MatchedKeywords),
			itoa(e.KTokenHitCount),
			itoa(e.ConfidenceScore),
			kMin,
			kMax,
			e.KQualifier,
			pyBool(e.ControlKeywordHit),
			jsonStrings(e.ControlKeywordForms),
			e.LineID,
			e.ModeGuess,
			pyBool(e.LineValidated),
			e.LineConfidence,
			e.DirectionText,
			e.DirectionPolarity,
			e.LocationText,
			e.PlatformText,
			jsonInts64(e.StitchedMessageIDs),
			e.TextTrunc,
			itoa(e.TextLen),
			e.TextSHA256,
		})
	}
	return writeCSV(path, eventFieldnames, rows)
}

// writeCSV writes UTF-8 CSV with \n newlines and minimal quoting
func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func itoa(n int) string     { return strconv.Itoa(n) }
func itoa64(n int64) string { return strconv.FormatInt(n, 10) }

// pyBool renders booleans the way the CSV contract spells them
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// pyFloat renders a float with an explicit decimal point for integral values
func pyFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func jsonInts(vs []int) string {
	if len(vs) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	sb.WriteByte(']')
	return sb.String()
}

func jsonInts64(vs []int64) string {
	if len(vs) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range vs {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	sb.WriteByte(']')
	return sb.String()
}

func jsonStrings(vs []string) string {
	if len(vs) == 0 {
		return "[]"
	}
	b, err := json.Marshal(vs)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// formatUTCZ renders a UTC timestamp as ISO 8601 with a Z suffix
func formatUTCZ(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05Z")
	}
	return t.Format("2006-01-02T15:04:05.000000Z")
}

// formatOffset renders a zoned timestamp with its numeric UTC offset
func formatOffset(t time.Time) string {
	if t.Nanosecond() == 0 {
		return t.Format("2006-01-02T15:04:05-07:00")
	}
	return t.Format("2006-01-02T15:04:05.000000-07:00")
}
