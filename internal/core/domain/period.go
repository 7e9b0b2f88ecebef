package domain

import (
	"fmt"
	"strconv"
	"time"
)

// PeriodType is the granularity of a report window.
type PeriodType string

const (
	PeriodDaily   PeriodType = "daily"
	PeriodMonthly PeriodType = "monthly"
	PeriodYearly  PeriodType = "yearly"
)

// Period is an inclusive window of civil dates.
type Period struct {
	Type  PeriodType `json:"periodType"`
	Key   string     `json:"periodKey"`
	Start time.Time  `json:"startDate"`
	End   time.Time  `json:"endDate"`
}

// DailyPeriod covers exactly one date.
func DailyPeriod(date time.Time) Period {
	d := NormalizeDate(date)
	return Period{Type: PeriodDaily, Key: d.Format(DateFormat), Start: d, End: d}
}

// MonthlyPeriod covers the calendar month.
func MonthlyPeriod(year int, month time.Month) (Period, error) {
	if month < time.January || month > time.December {
		return Period{}, fmt.Errorf("invalid month %d", month)
	}
	if err := validateYear(year); err != nil {
		return Period{}, err
	}
	start := NewDate(year, month, 1)
	return Period{
		Type:  PeriodMonthly,
		Key:   start.Format("2006-01"),
		Start: start,
		End:   start.AddDate(0, 1, -1),
	}, nil
}

// YearlyPeriod covers the calendar year.
func YearlyPeriod(year int) (Period, error) {
	if err := validateYear(year); err != nil {
		return Period{}, err
	}
	return Period{
		Type:  PeriodYearly,
		Key:   strconv.Itoa(year),
		Start: NewDate(year, time.January, 1),
		End:   NewDate(year, time.December, 31),
	}, nil
}

// ParsePeriod rebuilds a Period from its type and key.
func ParsePeriod(periodType PeriodType, key string) (Period, error) {
	switch periodType {
	case PeriodDaily:
		d, err := ParseDate(key)
		if err != nil {
			return Period{}, err
		}
		return DailyPeriod(d), nil
	case PeriodMonthly:
		t, err := time.Parse("2006-01", key)
		if err != nil {
			return Period{}, fmt.Errorf("invalid month key %q, expected YYYY-MM", key)
		}
		return MonthlyPeriod(t.Year(), t.Month())
	case PeriodYearly:
		y, err := strconv.Atoi(key)
		if err != nil {
			return Period{}, fmt.Errorf("invalid year key %q", key)
		}
		return YearlyPeriod(y)
	}
	return Period{}, fmt.Errorf("unknown period type %q", periodType)
}

// Days lists every date in the period in ascending order.
func (p Period) Days() []time.Time {
	days := make([]time.Time, 0, int(p.End.Sub(p.Start).Hours()/24)+1)
	for d := p.Start; !d.After(p.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// Contains reports whether date falls inside the window.
func (p Period) Contains(date time.Time) bool {
	d := NormalizeDate(date)
	return !d.Before(p.Start) && !d.After(p.End)
}

func validateYear(year int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("invalid year %d", year)
	}
	return nil
}
