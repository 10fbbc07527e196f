// Package service computes check probabilities from run artifacts
package service

import (
	"context"
	"time"

	"checkstats/internal/adapters/artifact"
	"checkstats/internal/core/bayes"
	"checkstats/internal/platform/errors"
	"checkstats/internal/platform/logger"
	"checkstats/internal/services/api/predict/domain"
	runsdom "checkstats/internal/services/api/runs/domain"
)

const dateLayout = "2006-01-02"

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Service defines the predict service contract
type Service interface {
	domain.ServicePort
}

// Svc implements the predict service on top of the active run's artifacts
type Svc struct {
	locator   runsdom.LocatorPort
	estimator *bayes.Estimator
}

// New constructs a predict service bound to the runs locator
func New(locator runsdom.LocatorPort) *Svc {
	if locator == nil {
		panic("predict.Service requires a run locator")
	}
	return &Svc{
		locator:   locator,
		estimator: bayes.New(logger.Named("predict")),
	}
}

// Line returns hourly posteriors for one (line, mode, weekday) slice.
// A trial is a dataset date falling on the weekday; a success is such a
// date with at least one matching event in the hour
func (s *Svc) Line(_ context.Context, in domain.LineInput) (domain.LinePrediction, error) {
	if in.WeekdayIdx < 0 || in.WeekdayIdx > 6 {
		return domain.LinePrediction{}, errors.InvalidArgf("weekday_idx must be in [0,6]")
	}

	runDir := s.locator.ActiveRunDir()
	md, err := artifact.ReadMetadata(runDir)
	if err != nil {
		return domain.LinePrediction{}, err
	}
	events, err := artifact.ReadEvents(runDir)
	if err != nil {
		return domain.LinePrediction{}, err
	}

	weekdayDates, err := datesOnWeekday(md, in.WeekdayIdx)
	if err != nil {
		return domain.LinePrediction{}, err
	}
	trials := len(weekdayDates)

	// distinct event dates per hour, filtered to the requested slice
	hitDates := make([]map[string]bool, 24)
	for _, e := range events {
		if in.LineID != "" && e.LineID != in.LineID {
			continue
		}
		if in.Mode != "" && e.ModeGuess != in.Mode {
			continue
		}
		if e.Hour < 0 || e.Hour > 23 || !weekdayDates[e.DateBerlin] {
			continue
		}
		if hitDates[e.Hour] == nil {
			hitDates[e.Hour] = make(map[string]bool)
		}
		hitDates[e.Hour][e.DateBerlin] = true
	}

	pred := domain.LinePrediction{
		LineID:     in.LineID,
		Mode:       in.Mode,
		WeekdayIdx: in.WeekdayIdx,
		Hours:      make([]domain.HourProbe, 0, 24),
	}
	for hour := 0; hour < 24; hour++ {
		sum, err := s.estimator.Posterior(bayes.Jeffreys, bayes.Counts{
			Trials:    trials,
			Successes: len(hitDates[hour]),
		})
		if err != nil {
			return domain.LinePrediction{}, err
		}
		pred.Hours = append(pred.Hours, domain.HourProbe{
			Hour:      hour,
			Trials:    sum.Trials,
			Successes: sum.Successes,
			ProbMean:  sum.Mean,
			ProbLow:   sum.CILow,
			ProbHigh:  sum.CIHigh,
		})
	}
	return pred, nil
}

// Overview returns the check probability for the whole range and per weekday,
// from the daily series where a success is a day with at least one event
func (s *Svc) Overview(_ context.Context) (domain.Overview, error) {
	runDir := s.locator.ActiveRunDir()
	days, err := artifact.ReadDayCounts(runDir)
	if err != nil {
		return domain.Overview{}, err
	}

	var rangeCounts bayes.Counts
	var byWeekday [7]bayes.Counts
	for _, d := range days {
		rangeCounts.Trials++
		if d.WeekdayIdx >= 0 && d.WeekdayIdx < 7 {
			byWeekday[d.WeekdayIdx].Trials++
		}
		if d.EventCount > 0 {
			rangeCounts.Successes++
			if d.WeekdayIdx >= 0 && d.WeekdayIdx < 7 {
				byWeekday[d.WeekdayIdx].Successes++
			}
		}
	}

	rangeSum, err := s.estimator.Posterior(bayes.Jeffreys, rangeCounts)
	if err != nil {
		return domain.Overview{}, err
	}
	out := domain.Overview{
		Range: domain.RangeProbe{
			Trials:    rangeSum.Trials,
			Successes: rangeSum.Successes,
			ProbMean:  rangeSum.Mean,
			ProbLow:   rangeSum.CILow,
			ProbHigh:  rangeSum.CIHigh,
		},
		Weekdays: make([]domain.WeekdayProb, 0, 7),
	}
	for wd := 0; wd < 7; wd++ {
		sum, err := s.estimator.Posterior(bayes.Jeffreys, byWeekday[wd])
		if err != nil {
			return domain.Overview{}, err
		}
		out.Weekdays = append(out.Weekdays, domain.WeekdayProb{
			WeekdayIdx: wd,
			Weekday:    weekdayLabels[wd],
			Trials:     sum.Trials,
			Successes:  sum.Successes,
			ProbMean:   sum.Mean,
			ProbLow:    sum.CILow,
			ProbHigh:   sum.CIHigh,
		})
	}
	return out, nil
}

// datesOnWeekday enumerates dataset dates falling on the given weekday
func datesOnWeekday(md artifact.Metadata, weekdayIdx int) (map[string]bool, error) {
	start, err := time.Parse(dateLayout, md.Dataset.StartBerlinDate)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorCodeInvalidArgument, "bad dataset start date")
	}
	end, err := time.Parse(dateLayout, md.Dataset.EndBerlinDate)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorCodeInvalidArgument, "bad dataset end date")
	}
	out := make(map[string]bool)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if (int(d.Weekday())+6)%7 == weekdayIdx {
			out[d.Format(dateLayout)] = true
		}
	}
	return out, nil
}
