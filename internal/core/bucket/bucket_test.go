package bucket

import (
	"testing"
	"time"
)

func date(y, m, d int) Date { return Date{Year: y, Month: m, Day: d} }

func TestCalendarOf(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}

	// 2024-01-01 is a Monday in ISO week 1 of 2024
	c := CalendarOf(time.Date(2024, 1, 1, 14, 30, 0, 0, berlin))
	if c.Date != date(2024, 1, 1) {
		t.Fatalf("date = %v", c.Date)
	}
	if c.WeekdayIdx != 0 || c.Weekday != "Mon" {
		t.Fatalf("weekday = %d %s", c.WeekdayIdx, c.Weekday)
	}
	if c.Hour != 14 {
		t.Fatalf("hour = %d", c.Hour)
	}
	if c.ISOYear != 2024 || c.ISOWeek != 1 {
		t.Fatalf("iso = %d-W%d", c.ISOYear, c.ISOWeek)
	}
	if c.MonthLabel != "2024-01" || c.WeekOfMonth != 1 {
		t.Fatalf("month = %s week-of-month = %d", c.MonthLabel, c.WeekOfMonth)
	}

	// 2023-12-31 is a Sunday still in ISO week 52 of 2023
	c = CalendarOf(time.Date(2023, 12, 31, 0, 5, 0, 0, berlin))
	if c.WeekdayIdx != 6 || c.ISOYear != 2023 || c.ISOWeek != 52 {
		t.Fatalf("got %d %d-W%d", c.WeekdayIdx, c.ISOYear, c.ISOWeek)
	}
	if c.WeekOfMonth != 5 {
		t.Fatalf("week-of-month = %d", c.WeekOfMonth)
	}
}

func TestWeekStartAndISOWeekStart(t *testing.T) {
	// any day of the week maps back to its Monday
	for d, want := range map[Date]Date{
		date(2024, 1, 1): date(2024, 1, 1),
		date(2024, 1, 4): date(2024, 1, 1),
		date(2024, 1, 7): date(2024, 1, 1),
		date(2024, 3, 1): date(2024, 2, 26),
	} {
		if got := d.WeekStart(); got != want {
			t.Errorf("WeekStart(%v) = %v, want %v", d, got, want)
		}
	}

	if got := ISOWeekStart(2024, 1); got != date(2024, 1, 1) {
		t.Errorf("ISOWeekStart(2024, 1) = %v", got)
	}
	// ISO week 1 of 2021 starts in the previous calendar year
	if got := ISOWeekStart(2021, 1); got != (date(2021, 1, 4)) {
		t.Errorf("ISOWeekStart(2021, 1) = %v", got)
	}
	if got := ISOWeekStart(2026, 1); got != date(2025, 12, 29) {
		t.Errorf("ISOWeekStart(2026, 1) = %v", got)
	}
}

func TestTallyAdd(t *testing.T) {
	berlin, _ := time.LoadLocation("Europe/Berlin")
	tally := NewTally()

	tally.Add(CalendarOf(time.Date(2024, 1, 1, 8, 0, 0, 0, berlin)), 1)
	tally.Add(CalendarOf(time.Date(2024, 1, 1, 8, 30, 0, 0, berlin)), 2)
	tally.Add(CalendarOf(time.Date(2024, 1, 8, 9, 0, 0, 0, berlin)), 1)

	if c := tally.Daily[date(2024, 1, 1)]; c.Messages != 2 || c.Events != 3 {
		t.Fatalf("daily = %+v", c)
	}
	if c := tally.Weekday[0]; c.Messages != 3 || c.Events != 4 {
		t.Fatalf("weekday = %+v", c)
	}
	if c := tally.Hour[8]; c.Messages != 2 || c.Events != 3 {
		t.Fatalf("hour = %+v", c)
	}
	if c := tally.WeekdayHour[WeekdayHourKey{0, 8}]; c.Messages != 2 {
		t.Fatalf("weekday-hour = %+v", c)
	}
	if c := tally.DayHour[DayHourKey{date(2024, 1, 8), 9}]; c.Messages != 1 {
		t.Fatalf("day-hour = %+v", c)
	}
	if c := tally.WeekOfMonth[2]; c.Messages != 1 {
		t.Fatalf("week-of-month = %+v", c)
	}
	if c := tally.MonthWeek[MonthWeekKey{"2024-01", 1}]; c.Messages != 2 {
		t.Fatalf("month-week = %+v", c)
	}
	if c := tally.Month["2024-01"]; c.Messages != 3 || c.Events != 4 {
		t.Fatalf("month = %+v", c)
	}
	if c := tally.ISOWeek[ISOWeekKey{2024, 2}]; c.Messages != 1 {
		t.Fatalf("iso-week = %+v", c)
	}
}

func TestBuildDailyRowsZeroFills(t *testing.T) {
	counts := map[Date]Counts{
		date(2024, 1, 2): {Messages: 3, Events: 1},
	}
	rows := BuildDailyRows(date(2024, 1, 1), date(2024, 1, 4), counts)
	if len(rows) != 4 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Messages != 0 || rows[0].Events != 0 {
		t.Fatalf("day 1 not zero: %+v", rows[0])
	}
	if rows[1].Date != date(2024, 1, 2) || rows[1].Messages != 3 || rows[1].Events != 1 {
		t.Fatalf("day 2 = %+v", rows[1])
	}
	if rows[3].Date != date(2024, 1, 4) {
		t.Fatalf("last date = %v", rows[3].Date)
	}
}

func TestBuildWeekdayRowsMeans(t *testing.T) {
	// 2024-01-01 (Mon) .. 2024-01-14 (Sun): every weekday occurs twice
	counts := map[int]Counts{
		0: {Messages: 5, Events: 3},
	}
	rows := BuildWeekdayRows(date(2024, 1, 1), date(2024, 1, 14), counts)
	if len(rows) != 7 {
		t.Fatalf("rows = %d", len(rows))
	}
	mon := rows[0]
	if mon.Weekday != "Mon" || mon.Occurrences != 2 {
		t.Fatalf("mon = %+v", mon)
	}
	if mon.MeanMessages != 2.5 || mon.MeanEvents != 1.5 {
		t.Fatalf("means = %v %v", mon.MeanMessages, mon.MeanEvents)
	}
	for _, r := range rows[1:] {
		if r.Occurrences != 2 || r.Messages != 0 || r.MeanMessages != 0 {
			t.Fatalf("unexpected row %+v", r)
		}
	}
}

func TestBuildWeekdayHourRowsDense(t *testing.T) {
	counts := map[WeekdayHourKey]Counts{
		{2, 17}: {Messages: 4, Events: 2},
	}
	rows := BuildWeekdayHourRows(counts)
	if len(rows) != 168 {
		t.Fatalf("rows = %d", len(rows))
	}
	// row order is weekday-major then hour
	r := rows[2*24+17]
	if r.Weekday != "Wed" || r.Hour != 17 || r.Messages != 4 || r.Events != 2 {
		t.Fatalf("cell = %+v", r)
	}
	if rows[0].WeekdayIdx != 0 || rows[0].Hour != 0 || rows[167].WeekdayIdx != 6 || rows[167].Hour != 23 {
		t.Fatalf("corner rows wrong: %+v %+v", rows[0], rows[167])
	}
}

func TestBuildISOWeekRowsPartial(t *testing.T) {
	// Wed 2024-01-03 .. Tue 2024-01-09 spans two partial ISO weeks
	counts := map[ISOWeekKey]Counts{
		{2024, 1}: {Messages: 2, Events: 1},
	}
	rows := BuildISOWeekRows(date(2024, 1, 3), date(2024, 1, 9), counts)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	w1 := rows[0]
	if w1.ISOYear != 2024 || w1.ISOWeek != 1 || w1.WeekStart != date(2024, 1, 1) {
		t.Fatalf("w1 = %+v", w1)
	}
	if w1.DaysInRange != 5 || !w1.Partial || w1.Messages != 2 {
		t.Fatalf("w1 = %+v", w1)
	}
	w2 := rows[1]
	if w2.ISOWeek != 2 || w2.DaysInRange != 2 || !w2.Partial || w2.Messages != 0 {
		t.Fatalf("w2 = %+v", w2)
	}

	// a full Monday..Sunday range is not partial
	rows = BuildISOWeekRows(date(2024, 1, 1), date(2024, 1, 7), counts)
	if len(rows) != 1 || rows[0].Partial || rows[0].DaysInRange != 7 {
		t.Fatalf("full week = %+v", rows[0])
	}
}

func TestBuildMonthRows(t *testing.T) {
	counts := map[string]Counts{
		"2024-01": {Messages: 10, Events: 4},
		"2024-02": {Messages: 29, Events: 0},
	}
	rows := BuildMonthRows(date(2024, 1, 22), date(2024, 2, 29), counts)
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	jan := rows[0]
	if jan.Month != "2024-01" || jan.DaysInRange != 10 || !jan.Partial {
		t.Fatalf("jan = %+v", jan)
	}
	if jan.MessagesPerDay != 1.0 || jan.EventsPerDay != 0.4 {
		t.Fatalf("jan rates = %v %v", jan.MessagesPerDay, jan.EventsPerDay)
	}
	feb := rows[1]
	if feb.DaysInRange != 29 || feb.Partial {
		t.Fatalf("feb = %+v", feb)
	}
	if feb.MessagesPerDay != 1.0 {
		t.Fatalf("feb rate = %v", feb.MessagesPerDay)
	}
}

func TestBuildCalendarDayRowsWeekOfMonth(t *testing.T) {
	// range starting mid-week: the first partial week is still ordinal 1
	rows := BuildCalendarDayRows(date(2024, 1, 31), date(2024, 2, 14))
	byDate := make(map[Date]CalendarDayRow)
	for _, r := range rows {
		byDate[r.Date] = r
	}

	if r := byDate[date(2024, 1, 31)]; r.Month != "2024-01" || r.WeekOfMonth != 1 {
		t.Fatalf("jan 31 = %+v", r)
	}
	// Feb 1 shares the week start with Jan 31 but is the first week seen in
	// February, so it gets ordinal 1 in its own month
	if r := byDate[date(2024, 2, 1)]; r.Month != "2024-02" || r.WeekOfMonth != 1 {
		t.Fatalf("feb 1 = %+v", r)
	}
	if r := byDate[date(2024, 2, 5)]; r.WeekOfMonth != 2 || r.WeekStart != date(2024, 2, 5) {
		t.Fatalf("feb 5 = %+v", r)
	}
	if r := byDate[date(2024, 2, 14)]; r.WeekOfMonth != 3 {
		t.Fatalf("feb 14 = %+v", r)
	}
}

func TestBuildDayHourRowsSparseSorted(t *testing.T) {
	counts := map[DayHourKey]Counts{
		{date(2024, 1, 2), 9}:  {Messages: 1, Events: 1},
		{date(2024, 1, 1), 22}: {Messages: 2, Events: 0},
		{date(2024, 1, 1), 7}:  {Messages: 1, Events: 1},
		{date(2024, 1, 3), 0}:  {},
	}
	rows := BuildDayHourRows(counts)
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Date != date(2024, 1, 1) || rows[0].Hour != 7 {
		t.Fatalf("rows[0] = %+v", rows[0])
	}
	if rows[1].Hour != 22 || rows[2].Date != date(2024, 1, 2) {
		t.Fatalf("order wrong: %+v %+v", rows[1], rows[2])
	}
}

func TestBuildMonthWeekdayStatRows(t *testing.T) {
	daily := BuildDailyRows(date(2024, 1, 1), date(2024, 1, 14), map[Date]Counts{
		date(2024, 1, 1): {Messages: 2, Events: 1},
		date(2024, 1, 8): {Messages: 4, Events: 0},
	})
	cal := BuildCalendarDayRows(date(2024, 1, 1), date(2024, 1, 14))
	days := BuildDayCountRows(daily, cal)

	rows := BuildMonthWeekdayStatRows(days)
	if len(rows) != 7 {
		t.Fatalf("rows = %d", len(rows))
	}
	mon := rows[0]
	if mon.Month != "2024-01" || mon.WeekdayIdx != 0 || mon.Occurrences != 2 {
		t.Fatalf("mon = %+v", mon)
	}
	if mon.Messages != 6 || mon.Events != 1 {
		t.Fatalf("mon totals = %+v", mon)
	}
	if mon.MeanMessages != 3.0 || mon.MeanEvents != 0.5 {
		t.Fatalf("mon means = %v %v", mon.MeanMessages, mon.MeanEvents)
	}
}

func TestRound6(t *testing.T) {
	if got := Round6(1.0 / 3.0); got != 0.333333 {
		t.Fatalf("got %v", got)
	}
	if got := Round6(2.0 / 3.0); got != 0.666667 {
		t.Fatalf("got %v", got)
	}
}
