// Package reminders keeps a medicine's scheduled notifications in step with
// its reminder time and recurrence.
package reminders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/carelog/internal/logger"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/scheduler"
	"github.com/julianstephens/carelog/internal/timerule"
)

// Scheduler is the part of the notification scheduler reminders need.
type Scheduler interface {
	Schedule(ctx context.Context, trigger timerule.Trigger, content scheduler.Content) (scheduler.Handle, error)
	Cancel(ctx context.Context, h scheduler.Handle) error
}

type Service struct {
	sched Scheduler
	loc   *time.Location
	title string
}

func New(sched Scheduler, loc *time.Location, title string) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{sched: sched, loc: loc, title: title}
}

// RuleFor derives the recurrence of a medicine. No time means no reminder,
// a date means a single reminder, weekdays mean weekly reminders and
// anything else repeats daily.
func RuleFor(m models.Medicine) (models.RecurrenceRule, error) {
	switch {
	case strings.TrimSpace(m.Time) == "":
		return models.Unscheduled(), nil
	case m.Date != "":
		date, err := models.ParseDate(m.Date)
		if err != nil {
			return models.RecurrenceRule{}, err
		}
		return models.OneTime(date), nil
	case len(m.Weekdays) > 0:
		return models.Weekly(m.Weekdays...), nil
	default:
		return models.Daily(), nil
	}
}

// Triggers returns the triggers a medicine would register at now.
func (s *Service) Triggers(m models.Medicine, now time.Time) ([]timerule.Trigger, error) {
	rule, err := RuleFor(m)
	if err != nil {
		return nil, err
	}
	t := timerule.ParseTimeOfDay(m.Time)
	return timerule.ComputeSchedule(rule, t, now.In(s.loc)), nil
}

// Reschedule cancels every handle the medicine holds and then registers
// the triggers for its current time and recurrence. The returned medicine
// carries the new handles. If registration fails part way, the handles
// registered so far are cancelled and the medicine has none.
func (s *Service) Reschedule(ctx context.Context, m models.Medicine, now time.Time) (models.Medicine, error) {
	m, err := s.Clear(ctx, m)
	if err != nil {
		return m, err
	}

	triggers, err := s.Triggers(m, now)
	if err != nil {
		return m, err
	}

	content := scheduler.Content{
		Title: s.title,
		Body:  m.Label(),
		Data:  map[string]string{"medicine_id": m.ID},
	}

	handles := make([]string, 0, len(triggers))
	for _, trig := range triggers {
		h, err := s.sched.Schedule(ctx, trig, content)
		if err != nil {
			for _, registered := range handles {
				if cerr := s.sched.Cancel(ctx, scheduler.Handle(registered)); cerr != nil {
					logger.Warn("Failed to roll back reminder", "handle", registered, "error", cerr)
				}
			}
			return m, fmt.Errorf("failed to schedule %s for %s: %w", trig.Describe(), m.Name, err)
		}
		handles = append(handles, string(h))
	}

	if len(handles) > 0 {
		m.NotificationIDs = handles
	}
	logger.Debug("Reminders rescheduled", "medicine", m.ID, "count", len(handles))
	return m, nil
}

// Clear cancels every handle the medicine holds.
func (s *Service) Clear(ctx context.Context, m models.Medicine) (models.Medicine, error) {
	for i, h := range m.NotificationIDs {
		if err := s.sched.Cancel(ctx, scheduler.Handle(h)); err != nil {
			m.NotificationIDs = m.NotificationIDs[i:]
			return m, fmt.Errorf("failed to cancel reminder %s: %w", h, err)
		}
	}
	m.NotificationIDs = nil
	return m, nil
}
