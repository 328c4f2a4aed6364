package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

type RecurrenceKind string

const (
	RecurrenceUnscheduled RecurrenceKind = "unscheduled"
	RecurrenceOneTime     RecurrenceKind = "once"
	RecurrenceWeekly      RecurrenceKind = "weekly"
	RecurrenceDaily       RecurrenceKind = "daily"
)

// Weekday numbers days 1..7 starting at Sunday, matching mobile
// notification schedulers.
type Weekday int

const (
	Sunday Weekday = iota + 1
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// WeekdayOf converts a time.Weekday.
func WeekdayOf(wd time.Weekday) Weekday {
	return Weekday(wd) + 1
}

func (w Weekday) Valid() bool {
	return w >= Sunday && w <= Saturday
}

// Time converts w to a time.Weekday. w must be valid.
func (w Weekday) Time() time.Weekday {
	return time.Weekday(w - 1)
}

func (w Weekday) String() string {
	if !w.Valid() {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return w.Time().String()[:3]
}

// RecurrenceRule describes how often a reminder fires. Only the fields
// belonging to Kind are meaningful.
type RecurrenceRule struct {
	Kind     RecurrenceKind `json:"kind"`
	Date     CalendarDate   `json:"date,omitempty"`
	Weekdays []Weekday      `json:"weekdays,omitempty"`
}

func OneTime(date CalendarDate) RecurrenceRule {
	return RecurrenceRule{Kind: RecurrenceOneTime, Date: date}
}

func Weekly(days ...Weekday) RecurrenceRule {
	return RecurrenceRule{Kind: RecurrenceWeekly, Weekdays: days}
}

func Daily() RecurrenceRule {
	return RecurrenceRule{Kind: RecurrenceDaily}
}

func Unscheduled() RecurrenceRule {
	return RecurrenceRule{Kind: RecurrenceUnscheduled}
}

// NormalizeWeekdays drops invalid and duplicate days and sorts the rest.
func NormalizeWeekdays(days []Weekday) []Weekday {
	seen := make(map[Weekday]bool, len(days))
	out := make([]Weekday, 0, len(days))
	for _, d := range days {
		if !d.Valid() || seen[d] {
			continue
		}
		seen[d] = true
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// String returns a human-readable description of the rule.
func (r RecurrenceRule) String() string {
	switch r.Kind {
	case RecurrenceOneTime:
		return fmt.Sprintf("Once on %s", r.Date)
	case RecurrenceWeekly:
		days := NormalizeWeekdays(r.Weekdays)
		names := make([]string, len(days))
		for i, d := range days {
			names[i] = d.String()
		}
		return fmt.Sprintf("Weekly: %s", strings.Join(names, ", "))
	case RecurrenceDaily:
		return "Daily"
	default:
		return "Unscheduled"
	}
}

var weekdayNames = map[string]Weekday{
	"sun":       Sunday,
	"sunday":    Sunday,
	"mon":       Monday,
	"monday":    Monday,
	"tue":       Tuesday,
	"tuesday":   Tuesday,
	"wed":       Wednesday,
	"wednesday": Wednesday,
	"thu":       Thursday,
	"thursday":  Thursday,
	"fri":       Friday,
	"friday":    Friday,
	"sat":       Saturday,
	"saturday":  Saturday,
}

// ParseWeekdays parses a comma-separated list of day names or numbers
// (1=Sunday .. 7=Saturday).
func ParseWeekdays(s string) ([]Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var days []Weekday
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := weekdayNames[part]; ok {
			days = append(days, wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || !Weekday(num).Valid() {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, Weekday(num))
	}
	return NormalizeWeekdays(days), nil
}

// FormatWeekdays is the inverse of ParseWeekdays, e.g. "mon,wed".
func FormatWeekdays(days []Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range NormalizeWeekdays(days) {
		names = append(names, strings.ToLower(d.String()))
	}
	return strings.Join(names, ",")
}
