package medicines

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/export"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/timerule"
)

type MedCmd struct {
	Add    MedAddCmd    `cmd:"" help:"Add a medicine."`
	Edit   MedEditCmd   `cmd:"" help:"Edit a medicine and reschedule its reminders."`
	Delete MedDeleteCmd `cmd:"" help:"Delete a medicine and cancel its reminders."`
	List   MedListCmd   `cmd:"" help:"List medicines." default:"1"`
}

type MedAddCmd struct {
	Name     string `arg:"" help:"Medicine name."`
	Dosage   string `short:"d" help:"Dosage, e.g. 10mg."`
	Time     string `short:"t" help:"Reminder time, e.g. 8:30am or 20:00. Leave empty for no reminder."`
	Date     string `help:"Remind once on this date (YYYY-MM-DD)."`
	Weekdays string `short:"w" help:"Comma-separated weekdays for weekly reminders (names or 1-7, Sunday=1)."`
	Notes    string `short:"n" help:"Free-form notes."`
}

func (c *MedAddCmd) Validate() error {
	if c.Date != "" && c.Weekdays != "" {
		return fmt.Errorf("--date and --weekdays cannot be combined")
	}
	if (c.Date != "" || c.Weekdays != "") && c.Time == "" {
		return fmt.Errorf("--time is required with --date or --weekdays")
	}
	if c.Time != "" {
		if _, err := timerule.ParseTimeOfDayStrict(c.Time); err != nil {
			return fmt.Errorf("invalid --time %q: %w", c.Time, err)
		}
	}
	return nil
}

func (c *MedAddCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	days, err := models.ParseWeekdays(c.Weekdays)
	if err != nil {
		return err
	}
	m := models.Medicine{
		Name:     strings.TrimSpace(c.Name),
		Dosage:   c.Dosage,
		Time:     c.Time,
		Date:     c.Date,
		Weekdays: days,
		Notes:    c.Notes,
	}

	m, err = ctx.Book.Medicines.Add(bg, m)
	if err != nil {
		return err
	}
	ctx.Printf("Added medicine: %s (ID: %s)\n", m.Label(), m.ID)
	printReminders(ctx, m)
	return nil
}

type MedEditCmd struct {
	ID       string  `arg:"" help:"Medicine ID."`
	Name     *string `help:"New name."`
	Dosage   *string `short:"d" help:"New dosage."`
	Time     *string `short:"t" help:"New reminder time. Empty removes the reminder."`
	Date     *string `help:"Remind once on this date. Empty clears it."`
	Weekdays *string `short:"w" help:"New weekdays. Empty clears them."`
	Notes    *string `short:"n" help:"New notes."`
}

func (c *MedEditCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	m, err := ctx.Book.Medicines.Get(bg, c.ID)
	if err != nil {
		return fmt.Errorf("medicine %s: %w", c.ID, err)
	}

	if c.Name != nil {
		m.Name = strings.TrimSpace(*c.Name)
	}
	if c.Dosage != nil {
		m.Dosage = *c.Dosage
	}
	if c.Time != nil {
		m.Time = *c.Time
	}
	if c.Date != nil {
		m.Date = *c.Date
		if m.Date != "" {
			m.Weekdays = nil
		}
	}
	if c.Weekdays != nil {
		days, err := models.ParseWeekdays(*c.Weekdays)
		if err != nil {
			return err
		}
		m.Weekdays = days
		if len(days) > 0 {
			m.Date = ""
		}
	}
	if c.Notes != nil {
		m.Notes = *c.Notes
	}

	m, err = ctx.Book.Medicines.Update(bg, m)
	if err != nil {
		return err
	}
	ctx.Printf("Updated medicine: %s\n", m.Label())
	printReminders(ctx, m)
	return nil
}

type MedDeleteCmd struct {
	ID string `arg:"" help:"Medicine ID."`
}

func (c *MedDeleteCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	m, err := ctx.Book.Medicines.Get(bg, c.ID)
	if err != nil {
		return fmt.Errorf("medicine %s: %w", c.ID, err)
	}
	if err := ctx.Book.Medicines.Delete(bg, c.ID); err != nil {
		return err
	}
	ctx.Printf("Deleted medicine: %s (%d reminder(s) cancelled)\n", m.Label(), len(m.NotificationIDs))
	return nil
}

type MedListCmd struct{}

func (c *MedListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}
	meds, err := ctx.Book.Medicines.List(bg)
	if err != nil {
		return err
	}
	if len(meds) == 0 {
		ctx.Println("No medicines found.")
		return nil
	}

	ctx.Println("Medicines:")
	for _, m := range meds {
		when := export.ScheduleLabel(m)
		if m.HasReminder() {
			when = fmt.Sprintf("%s at %s", when, timerule.ParseTimeOfDay(m.Time).Format12())
		}
		ctx.Printf("  %s  %s  [%s]\n", m.ID, m.Label(), when)
		if m.Notes != "" {
			ctx.Printf("      %s\n", m.Notes)
		}
	}
	return nil
}

func printReminders(ctx *cli.Context, m models.Medicine) {
	if len(m.NotificationIDs) == 0 {
		ctx.Println("  No reminders scheduled.")
		return
	}
	ctx.Printf("  %d reminder(s) scheduled: %s at %s\n", len(m.NotificationIDs), export.ScheduleLabel(m), timerule.ParseTimeOfDay(m.Time).Format12())
}
