package calendar

import (
	"fmt"
	"time"
)

// Date is a simulation calendar day. The zero value is not a valid date.
type Date struct {
	Year  int
	Month int
	Day   int
}

func New(year, month, day int) Date {
	return FromTime(time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
}

func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: int(m), Day: d}
}

func Parse(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("calendar: parse %q: %w", s, err)
	}
	return FromTime(t), nil
}

func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// JulianDay returns the day number counted from 1970-01-01.
func (d Date) JulianDay() int {
	return int(d.Time().Unix() / 86400)
}

func (d Date) YearDay() int { return d.Time().YearDay() }

func (d Date) AddDays(n int) Date { return FromTime(d.Time().AddDate(0, 0, n)) }

func (d Date) Before(o Date) bool { return d.JulianDay() < o.JulianDay() }

func (d Date) After(o Date) bool { return d.JulianDay() > o.JulianDay() }

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
