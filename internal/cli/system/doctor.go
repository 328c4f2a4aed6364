package system

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/julianstephens/carelog/internal/backup"
	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/keyring"
	"github.com/julianstephens/carelog/internal/migration"
	"github.com/julianstephens/carelog/internal/scheduler"
	"github.com/julianstephens/carelog/internal/storage"
	"github.com/julianstephens/carelog/internal/timerule"
	"github.com/julianstephens/carelog/migrations"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(context.Context, *cli.Context) error
	// warn reports failures as warnings instead of errors.
	warn bool
	// needsDB skips the check when the database could not be loaded.
	needsDB bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Settings", run: checkSettings, needsDB: true},
	{name: "Question catalog", run: checkCatalog, needsDB: true},
	{name: "Medicine records", run: checkMedicines, needsDB: true},
	{name: "Reminder handles", run: checkReminderHandles, needsDB: true},
	{name: "Remote store", run: checkRemote, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warn: true},
	{name: "Clock/timezone", run: checkClockTimezone},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := true
	if err := ctx.Load(bg); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else if err := ctx.Local.DB().PingContext(bg); err != nil {
		ctx.Printf("❌ Database reachable: FAIL\n")
		ctx.Printf("   Error: %v\n", err)
		hasError = true
		dbReachable = false
	} else {
		ctx.Printf("✓ Database reachable: OK\n")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(_ context.Context, ctx *cli.Context) error {
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return err
	}
	runner := migration.NewRunner(ctx.Local.DB(), sub)

	current, err := runner.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}
	latest, err := runner.GetLatestVersion()
	if err != nil {
		return fmt.Errorf("failed to get latest schema version: %w", err)
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d; run '%s init'", current, latest, constants.AppName)
	}
	return nil
}

func checkSettings(bg context.Context, ctx *cli.Context) error {
	settings, err := storage.LoadSettings(bg, ctx.Local)
	if err != nil {
		return err
	}
	if settings.ProfileID == "" {
		return errors.New("settings have no profile id")
	}
	_, err = storage.Location(settings)
	return err
}

func checkCatalog(_ context.Context, ctx *cli.Context) error {
	if ctx.Catalog.Len() == 0 {
		return errors.New("question catalog is empty")
	}
	return nil
}

func checkMedicines(bg context.Context, ctx *cli.Context) error {
	meds, err := ctx.Book.Medicines.List(bg)
	if err != nil {
		return err
	}
	var errs []error
	for _, m := range meds {
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.ID, err))
			continue
		}
		if m.HasReminder() {
			if _, err := timerule.ParseTimeOfDayStrict(m.Time); err != nil {
				errs = append(errs, fmt.Errorf("%s (%s): %w", m.Name, m.Time, err))
			}
		}
	}
	return errors.Join(errs...)
}

// checkReminderHandles reports handles that point at no notification and
// notifications no medicine owns.
func checkReminderHandles(bg context.Context, ctx *cli.Context) error {
	meds, err := ctx.Book.Medicines.List(bg)
	if err != nil {
		return err
	}
	pending, err := ctx.Scheduler.Pending(bg)
	if err != nil {
		return err
	}

	owned := make(map[scheduler.Handle]bool)
	var errs []error
	for _, m := range meds {
		for _, id := range m.NotificationIDs {
			h := scheduler.Handle(id)
			owned[h] = true
			if _, err := ctx.Scheduler.Get(bg, h); errors.Is(err, docstore.ErrNotFound) {
				errs = append(errs, fmt.Errorf("%s holds missing handle %s", m.Name, id))
			} else if err != nil {
				return err
			}
		}
	}
	orphaned := 0
	for _, n := range pending {
		if !owned[n.ID] {
			orphaned++
		}
	}
	if orphaned > 0 {
		errs = append(errs, fmt.Errorf("%d scheduled notifications belong to no medicine", orphaned))
	}
	if len(errs) > 0 {
		errs = append(errs, fmt.Errorf("run '%s reminder reset' to rebuild reminders", constants.AppName))
	}
	return errors.Join(errs...)
}

func checkRemote(bg context.Context, ctx *cli.Context) error {
	if ctx.Remote == keyring.Sentinel && !keyring.IsAvailable() {
		return keyring.ErrKeyringUnavailable
	}
	book, err := ctx.Answers(bg)
	if err != nil {
		return err
	}
	_, err = book.Remote(bg)
	return err
}

func checkBackupsPresent(_ context.Context, ctx *cli.Context) error {
	backups, err := backup.NewManager(ctx.DBPath).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkClockTimezone(_ context.Context, ctx *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	if ctx.Location == nil {
		return nil
	}
	if _, err := time.LoadLocation(ctx.Location.String()); err != nil {
		return fmt.Errorf("timezone %s is not loadable: %w", ctx.Location, err)
	}
	return nil
}
