package scheduler

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/timerule"
)

type recordingSender struct {
	sent []Notification
	fail map[Handle]bool
}

func (r *recordingSender) Send(_ context.Context, n Notification) error {
	if r.fail[n.ID] {
		return errors.New("tray not running")
	}
	r.sent = append(r.sent, n)
	return nil
}

func TestDispatchDue(t *testing.T) {
	s, now := setupScheduler(t)
	ctx := context.Background()

	once, _ := s.ScheduleAt(ctx, baseTime.Add(10*time.Minute), Content{Title: "Medication reminder", Body: "Aspirin"})
	broken, _ := s.ScheduleAt(ctx, baseTime.Add(20*time.Minute), Content{Body: "Metformin"})
	s.ScheduleAt(ctx, baseTime.Add(3*time.Hour), Content{Body: "later"})

	sender := &recordingSender{fail: map[Handle]bool{broken: true}}
	d := NewDispatcher(s, sender)

	*now = baseTime.Add(time.Hour)
	sent, err := d.DispatchDue(ctx)
	if err != nil {
		t.Fatalf("DispatchDue failed: %v", err)
	}
	if sent != 1 || len(sender.sent) != 1 || sender.sent[0].ID != once {
		t.Fatalf("expected only %s to be sent, got %d (%+v)", once, sent, sender.sent)
	}

	if _, err := s.Get(ctx, once); err == nil {
		t.Error("sent one-time notification should be removed")
	}
	if _, err := s.Get(ctx, broken); err != nil {
		t.Error("failed notification should stay pending for the next tick")
	}
}

func TestDispatchDueDryRunKeepsPending(t *testing.T) {
	s, now := setupScheduler(t)
	ctx := context.Background()

	h, _ := s.ScheduleRecurring(ctx, timerule.Trigger{Kind: timerule.TriggerDaily, Time: models.TimeOfDay{Hour: 8, Minute: 30}}, Content{Title: "Medication reminder", Body: "Aspirin"})

	var buf bytes.Buffer
	d := NewDispatcher(s, PrintSender{W: &buf})
	d.DryRun = true

	*now = baseTime.Add(time.Hour)
	if _, err := d.DispatchDue(ctx); err != nil {
		t.Fatalf("DispatchDue failed: %v", err)
	}
	if !strings.Contains(buf.String(), "[DryRun]") || !strings.Contains(buf.String(), "Aspirin") {
		t.Errorf("unexpected dry-run output %q", buf.String())
	}

	n, err := s.Get(ctx, h)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if n.LastFired != nil {
		t.Error("dry run should not mark notifications fired")
	}
}

func TestRunStopsWithContext(t *testing.T) {
	s, _ := setupScheduler(t)
	d := NewDispatcher(s, &recordingSender{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
