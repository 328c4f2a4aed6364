package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/notifier"
	"github.com/julianstephens/carelog/internal/scheduler"
)

type NotifyCmd struct {
	Watch  bool `help:"Keep running and deliver reminders every minute."`
	DryRun bool `help:"Print due reminders instead of sending them. Nothing is marked delivered."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	if !ctx.Settings.NotificationsEnabled {
		if c.DryRun {
			ctx.Println("Notifications are disabled in settings.")
		}
		return nil
	}

	var sender scheduler.Sender = notifier.New()
	if c.DryRun {
		sender = scheduler.PrintSender{W: ctx.Out}
	}
	d := scheduler.NewDispatcher(ctx.Scheduler, sender)
	d.DryRun = c.DryRun

	if c.Watch {
		sigCtx, stop := signal.NotifyContext(bg, os.Interrupt, syscall.SIGTERM)
		defer stop()
		return d.Run(sigCtx)
	}

	sent, err := d.DispatchDue(bg)
	if err != nil {
		return err
	}
	if c.DryRun && sent == 0 {
		ctx.Println("No reminders due.")
	}
	return nil
}
