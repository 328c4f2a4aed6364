// Package reminders implements the reminder commands.
package reminders

import (
	"context"
	"fmt"
	"io"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/cli/exports"
	"github.com/julianstephens/carelog/internal/export"
)

type ReminderCmd struct {
	List   ReminderListCmd   `cmd:"" help:"List scheduled reminders." default:"1"`
	Export ReminderExportCmd `cmd:"" help:"Export medication reminders as an iCalendar file."`
	Reset  ReminderResetCmd  `cmd:"" help:"Cancel every reminder and schedule them again from the medicine list."`
}

type ReminderListCmd struct{}

func (c *ReminderListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	pending, err := ctx.Scheduler.Pending(bg)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		ctx.Println("No reminders scheduled.")
		return nil
	}

	ctx.Printf("Scheduled reminders (%d):\n", len(pending))
	for _, n := range pending {
		next := "never"
		if !n.NextFire.IsZero() {
			next = n.NextFire.In(ctx.Location).Format("Mon 2006-01-02 15:04")
		}
		ctx.Printf("  %s  %s  %s  (next: %s)\n", n.ID, n.Content.Body, n.Trigger.Describe(), next)
	}
	return nil
}

type ReminderExportCmd struct {
	Output string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ReminderExportCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	meds, err := ctx.Book.Medicines.List(bg)
	if err != nil {
		return err
	}
	return exports.WriteTo(ctx, c.Output, func(w io.Writer) error {
		return export.WriteICS(w, meds, ctx.Now(), ctx.Location)
	})
}

type ReminderResetCmd struct{}

func (c *ReminderResetCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	if err := ctx.Scheduler.CancelAll(bg); err != nil {
		return fmt.Errorf("failed to cancel reminders: %w", err)
	}
	if err := ctx.Book.Medicines.Forget(bg); err != nil {
		return err
	}
	n, err := ctx.Book.Medicines.RescheduleAll(bg)
	if err != nil {
		return fmt.Errorf("failed to reschedule reminders: %w", err)
	}
	ctx.Printf("✓ Reminders reset: %d scheduled.\n", n)
	return nil
}
