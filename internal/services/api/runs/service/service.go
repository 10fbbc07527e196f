// Package service serves calendar payloads for analyzed runs
package service

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"checkstats/internal/adapters/artifact"
	"checkstats/internal/platform/errors"
	"checkstats/internal/platform/logger"
	analyzedom "checkstats/internal/services/analyze/domain"
	"checkstats/internal/services/api/runs/domain"
)

const dateLayout = "2006-01-02"

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Service defines the runs service contract
type Service interface {
	domain.ReaderPort
	domain.UploaderPort
	domain.LocatorPort
}

// Svc implements the runs service. The active run directory is mutable:
// a successful upload switches it so the UI can browse the new dataset
// without a restart
type Svc struct {
	mu     sync.RWMutex
	runDir string

	uploadsRoot    string
	maxUploadBytes int64
	analyzer       analyzedom.RunnerPort
	log            *logger.Logger
}

// New constructs a runs service rooted at runDir. A nil analyzer disables
// uploads; uploadsRoot defaults to a sibling of the run directory
func New(runDir, uploadsRoot string, maxUploadBytes int64, analyzer analyzedom.RunnerPort) *Svc {
	if runDir == "" {
		panic("runs.Service requires a run directory")
	}
	if uploadsRoot == "" {
		uploadsRoot = filepath.Join(filepath.Dir(runDir), "uploaded")
	}
	return &Svc{
		runDir:         runDir,
		uploadsRoot:    uploadsRoot,
		maxUploadBytes: maxUploadBytes,
		analyzer:       analyzer,
		log:            logger.Named("runs"),
	}
}

// ActiveRunDir returns the run directory payloads are currently served from
func (s *Svc) ActiveRunDir() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runDir
}

func (s *Svc) setActiveRunDir(dir string) {
	s.mu.Lock()
	s.runDir = dir
	s.mu.Unlock()
}

// Run describes the active run and which artifacts it carries
func (s *Svc) Run(_ context.Context) (domain.RunInfo, error) {
	runDir := s.ActiveRunDir()
	present, missing := artifact.Presence(runDir)

	info := domain.RunInfo{
		RunDir:           runDir,
		RunID:            filepath.Base(runDir),
		RequiredFiles:    append([]string(nil), artifact.RequiredUIFiles...),
		ArtifactsPresent: present,
		MissingFiles:     missing,
		DefaultMetric:    "check_message_count",
		AvailableMetrics: []string{"check_message_count", "check_event_count"},
		CanUpload:        s.analyzer != nil,
	}

	// metadata is best effort here; the run listing stays useful even when
	// the run is incomplete
	if present["run_metadata.json"] {
		if md, err := artifact.ReadMetadata(runDir); err == nil {
			info.Timezone = md.Config.Timezone
			if info.Timezone == "" {
				info.Timezone = "Europe/Berlin"
			}
			info.Dataset = &domain.DatasetRange{
				StartDate: md.Dataset.StartBerlinDate,
				EndDate:   md.Dataset.EndBerlinDate,
			}
		}
	}
	return info, nil
}

// Months returns the month overview rows for the active run
func (s *Svc) Months(_ context.Context) ([]domain.MonthOverview, error) {
	runDir, err := s.completeRunDir()
	if err != nil {
		return nil, err
	}
	rows, err := artifact.ReadMonthCounts(runDir)
	if err != nil {
		return nil, err
	}
	out := make([]domain.MonthOverview, 0, len(rows))
	for _, r := range rows {
		out = append(out, domain.MonthOverview{
			Month:          r.Month,
			MessageCount:   r.MessageCount,
			EventCount:     r.EventCount,
			DaysInRange:    r.DaysInRange,
			MessagesPerDay: r.MessagesPerDay,
			EventsPerDay:   r.EventsPerDay,
		})
	}
	return out, nil
}

// Month returns the Monday-aligned week grid for one month
func (s *Svc) Month(_ context.Context, month string) (domain.MonthDetail, error) {
	runDir, err := s.completeRunDir()
	if err != nil {
		return domain.MonthDetail{}, err
	}
	days, err := artifact.ReadDayCounts(runDir)
	if err != nil {
		return domain.MonthDetail{}, err
	}
	start, end, err := s.datasetRange(runDir)
	if err != nil {
		return domain.MonthDetail{}, err
	}

	byDate := make(map[string]artifact.DayRow, len(days))
	var inMonth []string
	for _, d := range days {
		byDate[d.Date] = d
		if d.Month == month {
			inMonth = append(inMonth, d.Date)
		}
	}
	detail := domain.MonthDetail{
		Month:        month,
		Weeks:        []string{},
		Grid:         []domain.GridCell{},
		WeekdayStats: []domain.MonthWeekdayStat{},
	}
	if len(inMonth) == 0 {
		return detail, nil
	}
	sort.Strings(inMonth)

	first, err := time.Parse(dateLayout, inMonth[0])
	if err != nil {
		return detail, errors.Wrap(err, errors.ErrorCodeInvalidArgument, "bad day row date")
	}
	last, _ := time.Parse(dateLayout, inMonth[len(inMonth)-1])
	startWeek := mondayOf(first)
	endWeek := mondayOf(last)

	inMonthSet := make(map[string]bool, len(inMonth))
	for _, d := range inMonth {
		inMonthSet[d] = true
	}

	for cur := startWeek; !cur.After(endWeek); cur = cur.AddDate(0, 0, 7) {
		weekStart := cur.Format(dateLayout)
		detail.Weeks = append(detail.Weeks, weekStart)
		for wd := 0; wd < 7; wd++ {
			day := cur.AddDate(0, 0, wd)
			dayStr := day.Format(dateLayout)
			inRange := !day.Before(start) && !day.After(end)
			cell := domain.GridCell{
				Date:          dayStr,
				WeekStartDate: weekStart,
				WeekdayIdx:    wd,
				Weekday:       weekdayLabels[wd],
				InMonth:       inMonthSet[dayStr],
				InRange:       inRange,
			}
			if row, ok := byDate[dayStr]; ok && inRange {
				cell.MessageCount = row.MessageCount
				cell.EventCount = row.EventCount
			}
			detail.Grid = append(detail.Grid, cell)
		}
	}

	stats, err := artifact.ReadMonthWeekdayStats(runDir)
	if err != nil {
		return detail, err
	}
	for _, st := range stats {
		if st.Month != month {
			continue
		}
		detail.WeekdayStats = append(detail.WeekdayStats, domain.MonthWeekdayStat{
			Month:        st.Month,
			WeekdayIdx:   st.WeekdayIdx,
			Weekday:      st.Weekday,
			Occurrences:  st.Occurrences,
			MessageCount: st.MessageCount,
			EventCount:   st.EventCount,
			MeanMessages: st.MeanMessages,
			MeanEvents:   st.MeanEvents,
		})
	}
	sort.Slice(detail.WeekdayStats, func(i, j int) bool {
		return detail.WeekdayStats[i].WeekdayIdx < detail.WeekdayStats[j].WeekdayIdx
	})
	return detail, nil
}

// Week returns seven dense days with all 24 hours for a Monday week start
func (s *Svc) Week(_ context.Context, weekStartDate string) (domain.WeekDetail, error) {
	start, err := time.Parse(dateLayout, weekStartDate)
	if err != nil || start.Weekday() != time.Monday {
		return domain.WeekDetail{}, errors.InvalidArgf("week_start_date must be a Monday (YYYY-MM-DD)")
	}
	runDir, err := s.completeRunDir()
	if err != nil {
		return domain.WeekDetail{}, err
	}
	days, err := artifact.ReadDayCounts(runDir)
	if err != nil {
		return domain.WeekDetail{}, err
	}
	cells, err := artifact.ReadDayHourCounts(runDir)
	if err != nil {
		return domain.WeekDetail{}, err
	}
	rangeStart, rangeEnd, err := s.datasetRange(runDir)
	if err != nil {
		return domain.WeekDetail{}, err
	}

	byDate := make(map[string]artifact.DayRow, len(days))
	for _, d := range days {
		byDate[d.Date] = d
	}
	hoursByDate := make(map[string]map[int]artifact.DayHourRow)
	for _, c := range cells {
		m := hoursByDate[c.Date]
		if m == nil {
			m = make(map[int]artifact.DayHourRow)
			hoursByDate[c.Date] = m
		}
		m[c.Hour] = c
	}

	detail := domain.WeekDetail{WeekStartDate: weekStartDate}
	for wd := 0; wd < 7; wd++ {
		day := start.AddDate(0, 0, wd)
		dayStr := day.Format(dateLayout)
		wdDay := domain.WeekDay{
			Date:       dayStr,
			WeekdayIdx: wd,
			Weekday:    weekdayLabels[wd],
			Hours:      make([]domain.HourCell, 0, 24),
		}
		inRange := !day.Before(rangeStart) && !day.After(rangeEnd)
		if row, ok := byDate[dayStr]; ok && inRange {
			wdDay.MessageCount = row.MessageCount
			wdDay.EventCount = row.EventCount
		}
		sparse := hoursByDate[dayStr]
		for hour := 0; hour < 24; hour++ {
			cell := domain.HourCell{Hour: hour}
			if c, ok := sparse[hour]; ok {
				cell.MessageCount = c.MessageCount
				cell.EventCount = c.EventCount
			}
			wdDay.Hours = append(wdDay.Hours, cell)
		}
		detail.Days = append(detail.Days, wdDay)
	}
	return detail, nil
}

// TopLines aggregates events by transit line and sorts busiest first
func (s *Svc) TopLines(_ context.Context) ([]domain.TopLine, error) {
	runDir, err := s.completeRunDir()
	if err != nil {
		return nil, err
	}
	events, err := artifact.ReadEvents(runDir)
	if err != nil {
		return nil, err
	}

	type key struct{ line, mode string }
	agg := make(map[key]*domain.TopLine)
	for _, e := range events {
		if strings.TrimSpace(e.LineID) == "" {
			continue
		}
		k := key{line: e.LineID, mode: e.ModeGuess}
		t := agg[k]
		if t == nil {
			t = &domain.TopLine{LineID: e.LineID, ModeGuess: e.ModeGuess}
			agg[k] = t
		}
		t.EventCount++
		t.TotalWeight += e.Weight
		if e.DateBerlin > t.LastSeen {
			t.LastSeen = e.DateBerlin
		}
	}

	out := make([]domain.TopLine, 0, len(agg))
	for _, t := range agg {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EventCount != out[j].EventCount {
			return out[i].EventCount > out[j].EventCount
		}
		if out[i].LineID != out[j].LineID {
			return out[i].LineID < out[j].LineID
		}
		return out[i].ModeGuess < out[j].ModeGuess
	})
	return out, nil
}

// completeRunDir returns the active run dir or a validation error naming
// the missing artifacts
func (s *Svc) completeRunDir() (string, error) {
	runDir := s.ActiveRunDir()
	if _, missing := artifact.Presence(runDir); len(missing) > 0 {
		return "", errors.InvalidArgf("missing ui artifacts: %s", strings.Join(missing, ", "))
	}
	return runDir, nil
}

func (s *Svc) datasetRange(runDir string) (start, end time.Time, err error) {
	md, err := artifact.ReadMetadata(runDir)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err = time.Parse(dateLayout, md.Dataset.StartBerlinDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, errors.ErrorCodeInvalidArgument, "bad dataset start date")
	}
	end, err = time.Parse(dateLayout, md.Dataset.EndBerlinDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, errors.ErrorCodeInvalidArgument, "bad dataset end date")
	}
	return start, end, nil
}

// mondayOf returns the Monday on or before d
func mondayOf(d time.Time) time.Time {
	wd := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -wd)
}
