package models

import (
	"fmt"
	"time"

	"github.com/julianstephens/carelog/internal/constants"
)

// TimeOfDay is a wall-clock time in 24-hour form.
// Values are produced by the timerule parser, not built from raw text.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// String formats the time as HH:MM.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Format12 formats the time as H:MMam / H:MMpm.
func (t TimeOfDay) Format12() string {
	meridiem := "am"
	if t.Hour >= 12 {
		meridiem = "pm"
	}
	hour := t.Hour % 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d%s", hour, t.Minute, meridiem)
}

// Minutes returns the number of minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// CalendarDate is a date without a time or zone.
type CalendarDate struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Day   int        `json:"day"`
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (CalendarDate, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}
	return DateOf(t), nil
}

func (d CalendarDate) IsZero() bool {
	return d.Year == 0 && d.Month == 0 && d.Day == 0
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// At returns the instant on d at the wall-clock time t in loc. A time that
// falls in a spring-forward gap is moved past the gap by the skipped span,
// so 2:30 on a day clocks jump from 2:00 to 3:00 becomes 3:30.
func (d CalendarDate) At(t TimeOfDay, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	at := time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, loc)
	if at.Hour() == t.Hour && at.Minute() == t.Minute {
		return at
	}
	_, before := at.Add(-12 * time.Hour).Zone()
	wall := time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, time.UTC)
	return wall.Add(-time.Duration(before) * time.Second).In(loc)
}

// AddDays returns the date n calendar days after d.
func (d CalendarDate) AddDays(n int) CalendarDate {
	return DateOf(time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC))
}
