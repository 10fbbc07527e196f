package bucket

// Counts is one bucket cell: how many event messages landed in the bucket
// and their summed event weight
type Counts struct {
	Messages int
	Events   int
}

// WeekdayHourKey buckets by weekday (0=Mon) and Berlin hour
type WeekdayHourKey struct {
	WeekdayIdx int
	Hour       int
}

// DayHourKey buckets by Berlin date and hour
type DayHourKey struct {
	Date Date
	Hour int
}

// MonthWeekKey buckets by YYYY-MM month label and simple week-of-month
type MonthWeekKey struct {
	Month string
	Week  int
}

// ISOWeekKey buckets by ISO year and week
type ISOWeekKey struct {
	Year int
	Week int
}

// Tally accumulates one event stream into all ten bucket spaces
type Tally struct {
	Daily       map[Date]Counts
	Weekday     map[int]Counts
	Hour        map[int]Counts
	WeekdayHour map[WeekdayHourKey]Counts
	DayHour     map[DayHourKey]Counts
	WeekOfMonth map[int]Counts
	MonthWeek   map[MonthWeekKey]Counts
	Month       map[string]Counts
	ISOWeek     map[ISOWeekKey]Counts
}

// NewTally returns an empty tally
func NewTally() *Tally {
	return &Tally{
		Daily:       make(map[Date]Counts),
		Weekday:     make(map[int]Counts),
		Hour:        make(map[int]Counts),
		WeekdayHour: make(map[WeekdayHourKey]Counts),
		DayHour:     make(map[DayHourKey]Counts),
		WeekOfMonth: make(map[int]Counts),
		MonthWeek:   make(map[MonthWeekKey]Counts),
		Month:       make(map[string]Counts),
		ISOWeek:     make(map[ISOWeekKey]Counts),
	}
}

// Add folds one event into every bucket space using the shared calendar
// features: one message, weight event units
func (t *Tally) Add(c Calendar, weight int) {
	bump := func(cur Counts) Counts {
		return Counts{Messages: cur.Messages + 1, Events: cur.Events + weight}
	}
	t.Daily[c.Date] = bump(t.Daily[c.Date])
	t.Weekday[c.WeekdayIdx] = bump(t.Weekday[c.WeekdayIdx])
	t.Hour[c.Hour] = bump(t.Hour[c.Hour])
	t.WeekdayHour[WeekdayHourKey{c.WeekdayIdx, c.Hour}] = bump(t.WeekdayHour[WeekdayHourKey{c.WeekdayIdx, c.Hour}])
	t.DayHour[DayHourKey{c.Date, c.Hour}] = bump(t.DayHour[DayHourKey{c.Date, c.Hour}])
	t.WeekOfMonth[c.WeekOfMonth] = bump(t.WeekOfMonth[c.WeekOfMonth])
	t.MonthWeek[MonthWeekKey{c.MonthLabel, c.WeekOfMonth}] = bump(t.MonthWeek[MonthWeekKey{c.MonthLabel, c.WeekOfMonth}])
	t.Month[c.MonthLabel] = bump(t.Month[c.MonthLabel])
	t.ISOWeek[ISOWeekKey{c.ISOYear, c.ISOWeek}] = bump(t.ISOWeek[ISOWeekKey{c.ISOYear, c.ISOWeek}])
}
