package engine

import (
	"fmt"
	"time"
)

const dayLayout = "2006-01-02"

// Day is a civil calendar date in the engine's fixed timezone.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayFromTime converts t into loc first and then takes the date.
// Truncating before converting gives wrong buckets near midnight.
func DayFromTime(t time.Time, loc *time.Location) Day {
	lt := t.In(loc)
	return Day{Year: lt.Year(), Month: lt.Month(), Day: lt.Day()}
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) IsZero() bool { return d == Day{} }

// Start is midnight of d in loc.
func (d Day) Start(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays works on the calendar, not on 24h steps, so DST days stay one day.
func (d Day) AddDays(n int) Day {
	t := time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC)
	return Day{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// DaysUntil counts calendar days from d to o; negative when o is earlier.
func (d Day) DaysUntil(o Day) int {
	a := time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC).Unix()
	b := time.Date(o.Year, o.Month, o.Day, 12, 0, 0, 0, time.UTC).Unix()
	return int((b - a) / 86400)
}

func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Day) After(o Day) bool { return o.Before(d) }

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
