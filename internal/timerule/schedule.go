package timerule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/julianstephens/carelog/internal/models"
)

type TriggerKind string

const (
	// TriggerAt fires once at a concrete instant.
	TriggerAt TriggerKind = "at"
	// TriggerWeekly fires every week on one weekday.
	TriggerWeekly TriggerKind = "weekly"
	// TriggerDaily fires every day.
	TriggerDaily TriggerKind = "daily"
)

// Trigger describes a single registration with a notification scheduler.
// At is set for TriggerAt; Weekday is set for TriggerWeekly.
type Trigger struct {
	Kind    TriggerKind      `json:"kind"`
	At      time.Time        `json:"at,omitempty"`
	Weekday models.Weekday   `json:"weekday,omitempty"`
	Time    models.TimeOfDay `json:"time"`
}

func (t Trigger) IsRecurring() bool {
	return t.Kind == TriggerWeekly || t.Kind == TriggerDaily
}

// ComputeSchedule returns the triggers that implement rule at time t,
// evaluated relative to from. Unscheduled rules produce no triggers.
func ComputeSchedule(rule models.RecurrenceRule, t models.TimeOfDay, from time.Time) []Trigger {
	switch rule.Kind {
	case models.RecurrenceOneTime:
		target := rule.Date.At(t, from.Location())
		if !target.After(from) {
			// A passed date still fires once, on the next occurrence.
			target = NextOccurrence(t, from)
		}
		return []Trigger{{Kind: TriggerAt, At: target, Time: t}}
	case models.RecurrenceWeekly:
		days := models.NormalizeWeekdays(rule.Weekdays)
		if len(days) == 0 {
			return nil
		}
		triggers := make([]Trigger, 0, len(days))
		for _, d := range days {
			triggers = append(triggers, Trigger{Kind: TriggerWeekly, Weekday: d, Time: t})
		}
		return triggers
	case models.RecurrenceDaily:
		return []Trigger{{Kind: TriggerDaily, Time: t}}
	default:
		return nil
	}
}

var rruleWeekdays = map[models.Weekday]rrule.Weekday{
	models.Sunday:    rrule.SU,
	models.Monday:    rrule.MO,
	models.Tuesday:   rrule.TU,
	models.Wednesday: rrule.WE,
	models.Thursday:  rrule.TH,
	models.Friday:    rrule.FR,
	models.Saturday:  rrule.SA,
}

var icsWeekdays = map[models.Weekday]string{
	models.Sunday:    "SU",
	models.Monday:    "MO",
	models.Tuesday:   "TU",
	models.Wednesday: "WE",
	models.Thursday:  "TH",
	models.Friday:    "FR",
	models.Saturday:  "SA",
}

// RRule builds the recurrence of a repeating trigger, anchored on the date
// of from in from's location.
func (t Trigger) RRule(from time.Time) (*rrule.RRule, error) {
	opt := rrule.ROption{
		Dtstart: models.DateOf(from).At(t.Time, from.Location()),
	}
	switch t.Kind {
	case TriggerDaily:
		opt.Freq = rrule.DAILY
	case TriggerWeekly:
		wd, ok := rruleWeekdays[t.Weekday]
		if !ok {
			return nil, fmt.Errorf("invalid weekday %d", int(t.Weekday))
		}
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{wd}
	default:
		return nil, fmt.Errorf("trigger kind %q does not repeat", t.Kind)
	}
	return rrule.NewRRule(opt)
}

// RRuleString returns the iCalendar RRULE value of a repeating trigger,
// e.g. "FREQ=WEEKLY;BYDAY=MO". It is empty for one-time triggers.
func (t Trigger) RRuleString() string {
	switch t.Kind {
	case TriggerDaily:
		return "FREQ=DAILY"
	case TriggerWeekly:
		if day, ok := icsWeekdays[t.Weekday]; ok {
			return "FREQ=WEEKLY;BYDAY=" + day
		}
	}
	return ""
}

// Next returns the first firing strictly after after, or the zero time if
// the trigger will not fire again.
func (t Trigger) Next(after time.Time) time.Time {
	if t.Kind == TriggerAt {
		if t.At.After(after) {
			return t.At
		}
		return time.Time{}
	}
	r, err := t.RRule(after)
	if err != nil {
		return time.Time{}
	}
	return r.After(after, false)
}

// Describe returns a short human-readable description of the trigger.
func (t Trigger) Describe() string {
	switch t.Kind {
	case TriggerAt:
		return fmt.Sprintf("once at %s", t.At.Format("2006-01-02 15:04"))
	case TriggerWeekly:
		return fmt.Sprintf("every %s at %s", t.Weekday, t.Time)
	case TriggerDaily:
		return fmt.Sprintf("daily at %s", t.Time)
	default:
		return string(t.Kind)
	}
}
