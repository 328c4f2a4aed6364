// Package export writes medication reminders as an iCalendar feed and the
// full record book as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/reminders"
	"github.com/julianstephens/carelog/internal/timerule"
)

const icsLocalFormat = "20060102T150405"

// WriteICS writes one VEVENT per reminder trigger. Recurring triggers get
// an RRULE and start at their next firing after now.
func WriteICS(w io.Writer, meds []models.Medicine, now time.Time, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(constants.ICSProductID)
	cal.SetName(constants.AppName + " reminders")

	for _, m := range meds {
		rule, err := reminders.RuleFor(m)
		if err != nil {
			return fmt.Errorf("medicine %s: %w", m.Name, err)
		}
		triggers := timerule.ComputeSchedule(rule, timerule.ParseTimeOfDay(m.Time), now)
		for i, trig := range triggers {
			start := trig.At
			if trig.IsRecurring() {
				start = trig.Next(now)
			}
			if start.IsZero() {
				continue
			}

			ev := cal.AddEvent(fmt.Sprintf("%s-%d@%s", m.ID, i, constants.AppName))
			ev.SetDtStampTime(now)
			ev.SetSummary(m.Label())
			if desc := description(m); desc != "" {
				ev.SetDescription(desc)
			}
			setTimes(ev, start.In(loc), loc)
			if rrule := trig.RRuleString(); rrule != "" {
				ev.AddRrule(rrule)
			}
		}
	}

	return cal.SerializeTo(w)
}

// setTimes writes DTSTART/DTEND in UTC only for UTC. The process-local
// zone has no portable name, so its times are written floating (no TZID)
// and clients read them in their own zone. Named zones get a TZID. Both
// keep BYDAY and the local hour stable across DST.
func setTimes(ev *ics.VEvent, start time.Time, loc *time.Location) {
	end := start.Add(constants.ExportEventDuration)
	var params []ics.PropertyParameter
	switch name := loc.String(); name {
	case "UTC":
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		return
	case "Local":
	default:
		params = append(params, &ics.KeyValues{Key: string(ics.ParameterTzid), Value: []string{name}})
	}
	ev.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsLocalFormat), params...)
	ev.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsLocalFormat), params...)
}

func description(m models.Medicine) string {
	var parts []string
	if m.Dosage != "" {
		parts = append(parts, "Dosage: "+m.Dosage)
	}
	if m.Notes != "" {
		parts = append(parts, m.Notes)
	}
	return strings.Join(parts, "\n")
}
