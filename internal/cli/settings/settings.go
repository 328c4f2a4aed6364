package settings

import (
	"context"
	"fmt"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/storage"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Update settings."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.Load(context.Background()); err != nil {
		return err
	}
	s := ctx.Settings
	ctx.Println("Current Settings:")
	ctx.Printf("  Profile ID:            %s\n", s.ProfileID)
	ctx.Printf("  Timezone:              %s\n", s.Timezone)
	ctx.Printf("  Remote Store:          %s\n", storage.Describe(ctx.Remote))
	ctx.Println("\nNotification Settings:")
	ctx.Printf("  Notifications Enabled: %v\n", s.NotificationsEnabled)
	ctx.Printf("  Reminder Title:        %s\n", s.ReminderTitle)
	return nil
}

type SettingsSetCmd struct {
	Timezone             *string `help:"IANA timezone name, or Local."`
	NotificationsEnabled *bool   `help:"Enable or disable reminder delivery."`
	ReminderTitle        *string `help:"Title shown on medication reminders."`
	NoReschedule         bool    `help:"Do not re-register reminders after changing timezone or title."`
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if err := ctx.Load(bg); err != nil {
		return err
	}

	settings := ctx.Settings
	updated := false
	reschedule := false
	if c.Timezone != nil && *c.Timezone != settings.Timezone {
		settings.Timezone = *c.Timezone
		updated, reschedule = true, true
	}
	if c.NotificationsEnabled != nil {
		settings.NotificationsEnabled = *c.NotificationsEnabled
		updated = true
	}
	if c.ReminderTitle != nil && *c.ReminderTitle != settings.ReminderTitle {
		settings.ReminderTitle = *c.ReminderTitle
		updated, reschedule = true, true
	}

	if !updated {
		ctx.Println("No changes specified. Use 'settings show' to view settings or flags to update them.")
		return nil
	}
	if err := ctx.SaveSettings(bg, settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Println("Settings updated successfully.")

	if reschedule && !c.NoReschedule {
		n, err := ctx.Book.Medicines.RescheduleAll(bg)
		if err != nil {
			return fmt.Errorf("failed to reschedule reminders: %w", err)
		}
		ctx.Printf("Rescheduled %d reminders.\n", n)
	}
	return nil
}
