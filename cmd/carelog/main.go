package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/cli/backups"
	"github.com/julianstephens/carelog/internal/cli/directory"
	"github.com/julianstephens/carelog/internal/cli/exports"
	"github.com/julianstephens/carelog/internal/cli/medicines"
	"github.com/julianstephens/carelog/internal/cli/profile"
	"github.com/julianstephens/carelog/internal/cli/reminders"
	"github.com/julianstephens/carelog/internal/cli/settings"
	"github.com/julianstephens/carelog/internal/cli/system"
	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/errors"
	"github.com/julianstephens/carelog/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"Local database path." type:"path" default:"~/.config/carelog/carelog.db" env:"CARELOG_DB"`
	Remote  string `help:"Answers store: a PostgreSQL or Redis URL, a SQLite path, or 'keyring' to read it from the OS keyring. Empty uses the local database. PostgreSQL URLs must NOT embed passwords." env:"CARELOG_REMOTE"`
	Debug   bool   `help:"Log debug output to stderr." env:"CARELOG_DEBUG"`

	Init      system.InitCmd         `cmd:"" help:"Initialize carelog storage."`
	Doctor    system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Tui       system.TuiCmd          `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Settings  settings.SettingsCmd   `cmd:"" help:"Manage application settings."`
	Answer    profile.AnswerCmd      `cmd:"" help:"Manage questionnaire answers."`
	Med       medicines.MedCmd       `cmd:"" help:"Manage medicines and their reminders."`
	Contact   directory.ContactCmd   `cmd:"" help:"Manage emergency contacts."`
	Physician directory.DoctorCmd    `cmd:"" help:"Manage doctors."`
	Insurance directory.InsuranceCmd `cmd:"" help:"Manage insurance policies."`
	Pharmacy  directory.PharmacyCmd  `cmd:"" help:"Manage pharmacies."`
	Reminder  reminders.ReminderCmd  `cmd:"" help:"Inspect and rebuild scheduled reminders."`
	Notify    system.NotifyCmd       `cmd:"" help:"Deliver due reminders."`
	Keyring   struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store the remote connection string in the OS keyring."`
		Get    system.KeyringGetCmd    `cmd:"" help:"Show the stored connection string with the password masked."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check keyring availability." default:"1"`
	} `cmd:"" help:"Manage the remote connection string in the OS keyring."`
	Backup backups.BackupCmd `cmd:"" help:"Manage database backups."`
	Export exports.ExportCmd `cmd:"" help:"Export records as a spreadsheet or reminders as a calendar."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Personal health records and medication reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(CLI.DB),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	logger.Debug("Starting", "command", kctx.Command(), "db", CLI.DB)

	appCtx := cli.New(CLI.DB, CLI.Remote)
	err := kctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("Failed to close stores", "error", cerr)
	}
	errors.Fatal(err)
}
