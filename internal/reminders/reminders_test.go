package reminders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/scheduler"
	"github.com/julianstephens/carelog/internal/timerule"
)

type fakeScheduler struct {
	next      int
	active    map[scheduler.Handle]timerule.Trigger
	log       []string
	failAfter int
	failOn    scheduler.Handle
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{active: map[scheduler.Handle]timerule.Trigger{}, failAfter: -1}
}

func (f *fakeScheduler) Schedule(_ context.Context, trig timerule.Trigger, _ scheduler.Content) (scheduler.Handle, error) {
	if f.failAfter == 0 {
		return "", errors.New("scheduler full")
	}
	if f.failAfter > 0 {
		f.failAfter--
	}
	f.next++
	h := scheduler.Handle(fmt.Sprintf("h%d", f.next))
	f.active[h] = trig
	f.log = append(f.log, "schedule "+string(h))
	return h, nil
}

func (f *fakeScheduler) Cancel(_ context.Context, h scheduler.Handle) error {
	if h == f.failOn {
		return errors.New("store unavailable")
	}
	delete(f.active, h)
	f.log = append(f.log, "cancel "+string(h))
	return nil
}

// Wednesday 2026-01-14 08:00 UTC
var now = time.Date(2026, 1, 14, 8, 0, 0, 0, time.UTC)

func TestRuleFor(t *testing.T) {
	tests := []struct {
		name string
		med  models.Medicine
		want models.RecurrenceKind
	}{
		{"no time", models.Medicine{Name: "A"}, models.RecurrenceUnscheduled},
		{"blank time", models.Medicine{Name: "A", Time: "  ", Date: "2026-02-01"}, models.RecurrenceUnscheduled},
		{"date", models.Medicine{Name: "A", Time: "9am", Date: "2026-02-01", Weekdays: []models.Weekday{models.Monday}}, models.RecurrenceOneTime},
		{"weekdays", models.Medicine{Name: "A", Time: "9am", Weekdays: []models.Weekday{models.Monday}}, models.RecurrenceWeekly},
		{"daily", models.Medicine{Name: "A", Time: "9am"}, models.RecurrenceDaily},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := RuleFor(tt.med)
			if err != nil {
				t.Fatalf("RuleFor failed: %v", err)
			}
			if rule.Kind != tt.want {
				t.Errorf("RuleFor() kind = %s, want %s", rule.Kind, tt.want)
			}
		})
	}

	if _, err := RuleFor(models.Medicine{Time: "9am", Date: "02/01/2026"}); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestRescheduleCancelsBeforeScheduling(t *testing.T) {
	f := newFakeScheduler()
	svc := New(f, time.UTC, "Medication reminder")
	ctx := context.Background()

	med := models.Medicine{ID: "m1", Name: "Aspirin", Time: "9:00 am", Weekdays: []models.Weekday{models.Friday, models.Monday}}
	med, err := svc.Reschedule(ctx, med, now)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if len(med.NotificationIDs) != 2 {
		t.Fatalf("expected 2 handles, got %v", med.NotificationIDs)
	}
	if trig := f.active[scheduler.Handle(med.NotificationIDs[0])]; trig.Weekday != models.Monday || trig.Time != (models.TimeOfDay{Hour: 9}) {
		t.Errorf("first trigger = %+v, want Monday 09:00", trig)
	}

	f.log = nil
	med.Weekdays = nil
	med, err = svc.Reschedule(ctx, med, now)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}

	want := []string{"cancel h1", "cancel h2", "schedule h3"}
	if fmt.Sprint(f.log) != fmt.Sprint(want) {
		t.Errorf("operation order = %v, want %v", f.log, want)
	}
	if len(f.active) != 1 || len(med.NotificationIDs) != 1 || med.NotificationIDs[0] != "h3" {
		t.Errorf("expected only h3 active, got %v / %v", f.active, med.NotificationIDs)
	}
	if f.active["h3"].Kind != timerule.TriggerDaily {
		t.Errorf("expected daily trigger, got %s", f.active["h3"].Kind)
	}
}

func TestRescheduleUnscheduledClearsHandles(t *testing.T) {
	f := newFakeScheduler()
	svc := New(f, time.UTC, "Medication reminder")
	ctx := context.Background()

	med, err := svc.Reschedule(ctx, models.Medicine{ID: "m1", Name: "Aspirin", Time: "8pm"}, now)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	med.Time = ""
	med, err = svc.Reschedule(ctx, med, now)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	if med.NotificationIDs != nil || len(f.active) != 0 {
		t.Errorf("expected no reminders, got %v / %v", med.NotificationIDs, f.active)
	}
}

func TestRescheduleOneTimePastDate(t *testing.T) {
	f := newFakeScheduler()
	svc := New(f, time.UTC, "Medication reminder")

	med, err := svc.Reschedule(context.Background(), models.Medicine{ID: "m1", Name: "Vaccine", Time: "7am", Date: "2026-01-01"}, now)
	if err != nil {
		t.Fatalf("Reschedule failed: %v", err)
	}
	trig := f.active[scheduler.Handle(med.NotificationIDs[0])]
	if want := time.Date(2026, 1, 15, 7, 0, 0, 0, time.UTC); trig.Kind != timerule.TriggerAt || !trig.At.Equal(want) {
		t.Errorf("trigger = %+v, want at %v", trig, want)
	}
}

func TestRescheduleRollsBackOnFailure(t *testing.T) {
	f := newFakeScheduler()
	f.failAfter = 2
	svc := New(f, time.UTC, "Medication reminder")

	med := models.Medicine{ID: "m1", Name: "Aspirin", Time: "9am", Weekdays: []models.Weekday{models.Monday, models.Wednesday, models.Friday}}
	med, err := svc.Reschedule(context.Background(), med, now)
	if err == nil {
		t.Fatal("expected error when the scheduler fails")
	}
	if len(f.active) != 0 {
		t.Errorf("expected partial registrations to be cancelled, still active: %v", f.active)
	}
	if len(med.NotificationIDs) != 0 {
		t.Errorf("expected no handles, got %v", med.NotificationIDs)
	}
}

func TestClearKeepsUncancelledHandles(t *testing.T) {
	f := newFakeScheduler()
	f.failOn = "h2"
	svc := New(f, time.UTC, "Medication reminder")

	med, err := svc.Clear(context.Background(), models.Medicine{NotificationIDs: []string{"h1", "h2", "h3"}})
	if err == nil {
		t.Fatal("expected cancel failure")
	}
	if fmt.Sprint(med.NotificationIDs) != "[h2 h3]" {
		t.Errorf("NotificationIDs = %v, want [h2 h3]", med.NotificationIDs)
	}
}
