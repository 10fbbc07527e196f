// Package bucket computes calendar bucket keys and dense zero-filled rollups
// for check events.
//
// All calendar features derive from one Berlin-local timestamp per event and
// are reused across every bucket space so an event can never land in
// inconsistent buckets
package bucket

import (
	"fmt"
	"time"
)

var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// WeekdayLabel returns the label for a 0=Mon..6=Sun index
func WeekdayLabel(idx int) string {
	return weekdayLabels[idx]
}

// Date is a calendar date, comparable and usable as a map key
type Date struct {
	Year  int
	Month int
	Day   int
}

// DateOf extracts the calendar date of t in its own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

// Time returns the date at midnight UTC, for calendar arithmetic only
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats as ISO YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// MonthLabel formats as YYYY-MM
func (d Date) MonthLabel() string {
	return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
}

// AddDays returns the date n days later
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is earlier than other
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is later than other
func (d Date) After(other Date) bool { return other.Before(d) }

// WeekdayIdx returns the weekday as 0=Mon..6=Sun
func (d Date) WeekdayIdx() int {
	return (int(d.Time().Weekday()) + 6) % 7
}

// ISOWeek returns the ISO 8601 year and week number
func (d Date) ISOWeek() (year, week int) {
	return d.Time().ISOWeek()
}

// WeekStart returns the Monday of d's week
func (d Date) WeekStart() Date {
	return d.AddDays(-d.WeekdayIdx())
}

// ParseDate parses an ISO YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// ISOWeekStart returns the Monday starting the given ISO week
func ISOWeekStart(isoYear, isoWeek int) Date {
	// Jan 4 is always in ISO week 1 of its year
	jan4 := Date{Year: isoYear, Month: 1, Day: 4}
	week1Monday := jan4.AddDays(-jan4.WeekdayIdx())
	return week1Monday.AddDays((isoWeek - 1) * 7)
}

// WeekOfMonthSimple returns 1 + (day-1)/7, the simple 1..5 ordinal
func WeekOfMonthSimple(day int) int {
	return 1 + (day-1)/7
}

// DaysInCalendarMonth returns the true length of a YYYY-MM month
func DaysInCalendarMonth(year, month int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, 0).Add(-24 * time.Hour).Day()
}

// EachDate calls fn for every date from start to end inclusive
func EachDate(start, end Date, fn func(Date)) {
	for d := start; !d.After(end); d = d.AddDays(1) {
		fn(d)
	}
}

// Calendar bundles the per-event calendar features computed once from the
// Berlin-local timestamp
type Calendar struct {
	Date        Date
	WeekdayIdx  int
	Weekday     string
	Hour        int
	ISOYear     int
	ISOWeek     int
	MonthLabel  string
	WeekOfMonth int
}

// CalendarOf computes all calendar features of a local timestamp
func CalendarOf(local time.Time) Calendar {
	d := DateOf(local)
	isoYear, isoWeek := d.ISOWeek()
	idx := d.WeekdayIdx()
	return Calendar{
		Date:        d,
		WeekdayIdx:  idx,
		Weekday:     WeekdayLabel(idx),
		Hour:        local.Hour(),
		ISOYear:     isoYear,
		ISOWeek:     isoWeek,
		MonthLabel:  d.MonthLabel(),
		WeekOfMonth: WeekOfMonthSimple(d.Day),
	}
}
