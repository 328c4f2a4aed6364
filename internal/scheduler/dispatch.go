package scheduler

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/logger"
)

// Sender delivers a notification to the user.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// PrintSender writes notifications to W instead of delivering them.
type PrintSender struct {
	W io.Writer
}

func (p PrintSender) Send(_ context.Context, n Notification) error {
	_, err := fmt.Fprintf(p.W, "[DryRun] %s %s: %s\n", n.NextFire.Format("2006-01-02 15:04"), n.Content.Title, n.Content.Body)
	return err
}

type Dispatcher struct {
	sched  *Scheduler
	sender Sender
	// DryRun leaves notifications pending after sending.
	DryRun bool
}

func NewDispatcher(sched *Scheduler, sender Sender) *Dispatcher {
	return &Dispatcher{sched: sched, sender: sender}
}

// DispatchDue sends every due notification and returns how many were
// delivered. A failed send leaves the notification due for the next tick.
func (d *Dispatcher) DispatchDue(ctx context.Context) (int, error) {
	now := d.sched.now()
	due, err := d.sched.Due(ctx, now)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range due {
		if err := d.sender.Send(ctx, n); err != nil {
			logger.Warn("Failed to send notification", "handle", n.ID, "error", err)
			continue
		}
		sent++
		if d.DryRun {
			continue
		}
		if err := d.sched.MarkFired(ctx, n.ID, now); err != nil {
			return sent, fmt.Errorf("failed to mark notification %s fired: %w", n.ID, err)
		}
	}
	return sent, nil
}

// Run dispatches once immediately and then on every cron tick until ctx
// is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	tick := func() {
		if n, err := d.DispatchDue(ctx); err != nil {
			logger.Error("Notification dispatch failed", "error", err)
		} else if n > 0 {
			logger.Info("Notifications sent", "count", n)
		}
	}

	c := cron.New(cron.WithLocation(d.sched.loc))
	if _, err := c.AddFunc(constants.NotifyTickSpec, tick); err != nil {
		return fmt.Errorf("invalid dispatch schedule: %w", err)
	}

	tick()
	c.Start()
	logger.Debug("Notification dispatcher started", "spec", constants.NotifyTickSpec)

	<-ctx.Done()
	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(constants.NotifyRequestTimeout):
	}
	return nil
}
