package bucket

import (
	"math"
	"sort"
)

// Rollup builders. Every builder produces dense, deterministic rows over the
// observed [start, end] date range: absent buckets appear with zero counts,
// never missing rows. Means and per-day rates are rounded to 6 decimals.

// Round6 rounds to 6 decimal places
func Round6(x float64) float64 {
	return math.Round(x*1e6) / 1e6
}

// DailyRow is one date of the dense daily series
type DailyRow struct {
	Date     Date
	Messages int
	Events   int
}

// BuildDailyRows zero-fills the daily series across the range
func BuildDailyRows(start, end Date, counts map[Date]Counts) []DailyRow {
	var rows []DailyRow
	EachDate(start, end, func(d Date) {
		c := counts[d]
		rows = append(rows, DailyRow{Date: d, Messages: c.Messages, Events: c.Events})
	})
	return rows
}

// WeekdayRow carries weekday totals plus occurrence-normalized means
type WeekdayRow struct {
	Weekday      string
	WeekdayIdx   int
	Messages     int
	Events       int
	Occurrences  int
	MeanMessages float64
	MeanEvents   float64
}

// BuildWeekdayRows emits all seven weekdays with totals and per-occurrence
// means over the range
func BuildWeekdayRows(start, end Date, counts map[int]Counts) []WeekdayRow {
	occ := make(map[int]int, 7)
	EachDate(start, end, func(d Date) {
		occ[d.WeekdayIdx()]++
	})

	rows := make([]WeekdayRow, 0, 7)
	for idx := 0; idx < 7; idx++ {
		c := counts[idx]
		row := WeekdayRow{
			Weekday:     WeekdayLabel(idx),
			WeekdayIdx:  idx,
			Messages:    c.Messages,
			Events:      c.Events,
			Occurrences: occ[idx],
		}
		if row.Occurrences > 0 {
			row.MeanMessages = Round6(float64(c.Messages) / float64(row.Occurrences))
			row.MeanEvents = Round6(float64(c.Events) / float64(row.Occurrences))
		}
		rows = append(rows, row)
	}
	return rows
}

// HourRow is one of the 24 hourly totals
type HourRow struct {
	Hour     int
	Messages int
	Events   int
}

// BuildHourRows emits all 24 hours
func BuildHourRows(counts map[int]Counts) []HourRow {
	rows := make([]HourRow, 0, 24)
	for h := 0; h < 24; h++ {
		c := counts[h]
		rows = append(rows, HourRow{Hour: h, Messages: c.Messages, Events: c.Events})
	}
	return rows
}

// WeekdayHourRow is one cell of the 7x24 matrix
type WeekdayHourRow struct {
	Weekday    string
	WeekdayIdx int
	Hour       int
	Messages   int
	Events     int
}

// BuildWeekdayHourRows emits the full 168-cell weekday x hour matrix
func BuildWeekdayHourRows(counts map[WeekdayHourKey]Counts) []WeekdayHourRow {
	rows := make([]WeekdayHourRow, 0, 7*24)
	for idx := 0; idx < 7; idx++ {
		for h := 0; h < 24; h++ {
			c := counts[WeekdayHourKey{idx, h}]
			rows = append(rows, WeekdayHourRow{
				Weekday:    WeekdayLabel(idx),
				WeekdayIdx: idx,
				Hour:       h,
				Messages:   c.Messages,
				Events:     c.Events,
			})
		}
	}
	return rows
}

// WeekOfMonthRow is one simple week-of-month total (1..5)
type WeekOfMonthRow struct {
	Week     int
	Messages int
	Events   int
}

// BuildWeekOfMonthRows emits weeks 1..5
func BuildWeekOfMonthRows(counts map[int]Counts) []WeekOfMonthRow {
	rows := make([]WeekOfMonthRow, 0, 5)
	for w := 1; w <= 5; w++ {
		c := counts[w]
		rows = append(rows, WeekOfMonthRow{Week: w, Messages: c.Messages, Events: c.Events})
	}
	return rows
}

// MonthWeekRow is one observed (month, week-of-month) total
type MonthWeekRow struct {
	Month    string
	Week     int
	Messages int
	Events   int
}

// BuildMonthWeekRows emits observed month x week-of-month cells, sorted
func BuildMonthWeekRows(counts map[MonthWeekKey]Counts) []MonthWeekRow {
	keys := make([]MonthWeekKey, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Month != keys[j].Month {
			return keys[i].Month < keys[j].Month
		}
		return keys[i].Week < keys[j].Week
	})

	rows := make([]MonthWeekRow, 0, len(keys))
	for _, k := range keys {
		c := counts[k]
		rows = append(rows, MonthWeekRow{Month: k.Month, Week: k.Week, Messages: c.Messages, Events: c.Events})
	}
	return rows
}

// ISOWeekRow is one ISO week touched by the range
type ISOWeekRow struct {
	ISOYear     int
	ISOWeek     int
	WeekStart   Date
	DaysInRange int
	Partial     bool
	Messages    int
	Events      int
}

// BuildISOWeekRows emits one row per ISO week the range touches, with the
// number of range days falling in the week and a partial-week flag
func BuildISOWeekRows(start, end Date, counts map[ISOWeekKey]Counts) []ISOWeekRow {
	days := make(map[ISOWeekKey]int)
	EachDate(start, end, func(d Date) {
		y, w := d.ISOWeek()
		days[ISOWeekKey{y, w}]++
	})

	keys := make([]ISOWeekKey, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Year != keys[j].Year {
			return keys[i].Year < keys[j].Year
		}
		return keys[i].Week < keys[j].Week
	})

	rows := make([]ISOWeekRow, 0, len(keys))
	for _, k := range keys {
		c := counts[k]
		rows = append(rows, ISOWeekRow{
			ISOYear:     k.Year,
			ISOWeek:     k.Week,
			WeekStart:   ISOWeekStart(k.Year, k.Week),
			DaysInRange: days[k],
			Partial:     days[k] < 7,
			Messages:    c.Messages,
			Events:      c.Events,
		})
	}
	return rows
}

// MonthRow carries month totals with range-normalized per-day rates
type MonthRow struct {
	Month          string
	Messages       int
	Events         int
	DaysInRange    int
	Partial        bool
	MessagesPerDay float64
	EventsPerDay   float64
}

// BuildMonthRows emits one row per month the range touches. Partial compares
// range coverage against the true calendar month length
func BuildMonthRows(start, end Date, counts map[string]Counts) []MonthRow {
	type monthSpan struct {
		year, month, days int
	}
	spans := make(map[string]*monthSpan)
	EachDate(start, end, func(d Date) {
		label := d.MonthLabel()
		if sp, ok := spans[label]; ok {
			sp.days++
		} else {
			spans[label] = &monthSpan{year: d.Year, month: d.Month, days: 1}
		}
	})

	labels := make([]string, 0, len(spans))
	for label := range spans {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	rows := make([]MonthRow, 0, len(labels))
	for _, label := range labels {
		sp := spans[label]
		c := counts[label]
		row := MonthRow{
			Month:       label,
			Messages:    c.Messages,
			Events:      c.Events,
			DaysInRange: sp.days,
			Partial:     sp.days < DaysInCalendarMonth(sp.year, sp.month),
		}
		if sp.days > 0 {
			row.MessagesPerDay = Round6(float64(c.Messages) / float64(sp.days))
			row.EventsPerDay = Round6(float64(c.Events) / float64(sp.days))
		}
		rows = append(rows, row)
	}
	return rows
}

// CalendarDayRow is one dense calendar-index row with a month-local week
// ordinal (nth distinct week start within the month's range coverage)
type CalendarDayRow struct {
	Date        Date
	Month       string
	WeekdayIdx  int
	Weekday     string
	ISOYear     int
	ISOWeek     int
	WeekStart   Date
	WeekOfMonth int
}

// BuildCalendarDayRows emits dense calendar features for every range date
func BuildCalendarDayRows(start, end Date) []CalendarDayRow {
	var rows []CalendarDayRow
	EachDate(start, end, func(d Date) {
		isoYear, isoWeek := d.ISOWeek()
		idx := d.WeekdayIdx()
		rows = append(rows, CalendarDayRow{
			Date:       d,
			Month:      d.MonthLabel(),
			WeekdayIdx: idx,
			Weekday:    WeekdayLabel(idx),
			ISOYear:    isoYear,
			ISOWeek:    isoWeek,
			WeekStart:  d.WeekStart(),
		})
	})

	// month-local week ordinal: 1-based index of the distinct week starts
	// seen within each month, in date order
	ordinals := make(map[[2]string]int)
	nextByMonth := make(map[string]int)
	for _, row := range rows {
		key := [2]string{row.Month, row.WeekStart.String()}
		if _, ok := ordinals[key]; !ok {
			nextByMonth[row.Month]++
			ordinals[key] = nextByMonth[row.Month]
		}
	}
	for i := range rows {
		rows[i].WeekOfMonth = ordinals[[2]string{rows[i].Month, rows[i].WeekStart.String()}]
	}
	return rows
}

// DayCountRow joins the dense daily totals with calendar features
type DayCountRow struct {
	Date        Date
	Messages    int
	Events      int
	Month       string
	WeekdayIdx  int
	Weekday     string
	ISOYear     int
	ISOWeek     int
	WeekStart   Date
	WeekOfMonth int
}

// BuildDayCountRows joins daily totals with the calendar index
func BuildDayCountRows(daily []DailyRow, calendar []CalendarDayRow) []DayCountRow {
	byDate := make(map[Date]CalendarDayRow, len(calendar))
	for _, c := range calendar {
		byDate[c.Date] = c
	}

	rows := make([]DayCountRow, 0, len(daily))
	for _, d := range daily {
		c := byDate[d.Date]
		rows = append(rows, DayCountRow{
			Date:        d.Date,
			Messages:    d.Messages,
			Events:      d.Events,
			Month:       c.Month,
			WeekdayIdx:  c.WeekdayIdx,
			Weekday:     c.Weekday,
			ISOYear:     c.ISOYear,
			ISOWeek:     c.ISOWeek,
			WeekStart:   c.WeekStart,
			WeekOfMonth: c.WeekOfMonth,
		})
	}
	return rows
}

// DayHourRow is one sparse (date, hour) cell for week drilldowns
type DayHourRow struct {
	Date     Date
	Hour     int
	Messages int
	Events   int
}

// BuildDayHourRows emits observed (date, hour) cells, sorted, dropping
// all-zero cells
func BuildDayHourRows(counts map[DayHourKey]Counts) []DayHourRow {
	keys := make([]DayHourKey, 0, len(counts))
	for k, c := range counts {
		if c.Messages == 0 && c.Events == 0 {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Date != keys[j].Date {
			return keys[i].Date.Before(keys[j].Date)
		}
		return keys[i].Hour < keys[j].Hour
	})

	rows := make([]DayHourRow, 0, len(keys))
	for _, k := range keys {
		c := counts[k]
		rows = append(rows, DayHourRow{Date: k.Date, Hour: k.Hour, Messages: c.Messages, Events: c.Events})
	}
	return rows
}

// MonthWeekdayStatRow carries month x weekday totals and means
type MonthWeekdayStatRow struct {
	Month        string
	WeekdayIdx   int
	Weekday      string
	Occurrences  int
	Messages     int
	Events       int
	MeanMessages float64
	MeanEvents   float64
}

// BuildMonthWeekdayStatRows folds dense day rows into month x weekday stats
func BuildMonthWeekdayStatRows(days []DayCountRow) []MonthWeekdayStatRow {
	type key struct {
		month string
		idx   int
	}
	type agg struct {
		occ, msgs, evts int
	}
	totals := make(map[key]*agg)
	for _, d := range days {
		k := key{d.Month, d.WeekdayIdx}
		a, ok := totals[k]
		if !ok {
			a = &agg{}
			totals[k] = a
		}
		a.occ++
		a.msgs += d.Messages
		a.evts += d.Events
	}

	keys := make([]key, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return keys[i].idx < keys[j].idx
	})

	rows := make([]MonthWeekdayStatRow, 0, len(keys))
	for _, k := range keys {
		a := totals[k]
		row := MonthWeekdayStatRow{
			Month:       k.month,
			WeekdayIdx:  k.idx,
			Weekday:     WeekdayLabel(k.idx),
			Occurrences: a.occ,
			Messages:    a.msgs,
			Events:      a.evts,
		}
		if a.occ > 0 {
			row.MeanMessages = Round6(float64(a.msgs) / float64(a.occ))
			row.MeanEvents = Round6(float64(a.evts) / float64(a.occ))
		}
		rows = append(rows, row)
	}
	return rows
}
