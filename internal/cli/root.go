// Package cli holds the state shared by every carelog command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/carelog/internal/backup"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/docstore/sqlite"
	"github.com/julianstephens/carelog/internal/keyring"
	"github.com/julianstephens/carelog/internal/logger"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/questions"
	"github.com/julianstephens/carelog/internal/records"
	"github.com/julianstephens/carelog/internal/reminders"
	"github.com/julianstephens/carelog/internal/scheduler"
	"github.com/julianstephens/carelog/internal/storage"
)

type Context struct {
	DBPath string
	// Remote is the answers store: a connection string, a SQLite path,
	// keyring.Sentinel, or empty to use the local database.
	Remote string

	Out io.Writer
	In  io.Reader

	Local     *sqlite.Store
	Settings  models.Settings
	Location  *time.Location
	Catalog   *questions.Catalog
	Scheduler *scheduler.Scheduler
	Reminders *reminders.Service
	Book      *records.Book

	remote docstore.Store
}

func New(dbPath, remote string) *Context {
	return &Context{
		DBPath: dbPath,
		Remote: remote,
		Out:    os.Stdout,
		In:     os.Stdin,
	}
}

// Init creates or migrates the local database and loads the context.
func (c *Context) Init(ctx context.Context) error {
	if c.Local != nil {
		return nil
	}
	local, err := storage.InitLocal(c.DBPath)
	if err != nil {
		return err
	}
	return c.wire(ctx, local)
}

// Load opens an initialized local database. Calling it again is a no-op.
func (c *Context) Load(ctx context.Context) error {
	if c.Local != nil {
		return nil
	}
	local, err := storage.OpenLocal(c.DBPath)
	if err != nil {
		return err
	}
	return c.wire(ctx, local)
}

func (c *Context) wire(ctx context.Context, local *sqlite.Store) error {
	settings, err := storage.EnsureSettings(ctx, local)
	if err != nil {
		local.Close()
		return err
	}
	catalog, err := questions.Default()
	if err != nil {
		local.Close()
		return err
	}

	c.Local = local
	c.Catalog = catalog
	c.apply(settings)
	return nil
}

// apply rebuilds the services that depend on settings.
func (c *Context) apply(settings models.Settings) {
	loc, err := storage.Location(settings)
	if err != nil {
		logger.Warn("Invalid timezone in settings, using local time", "timezone", settings.Timezone, "error", err)
		loc = time.Local
	}

	c.Settings = settings
	c.Location = loc
	c.Scheduler = scheduler.New(c.Local, loc)
	c.Reminders = reminders.New(c.Scheduler, loc, settings.ReminderTitle)

	var answers *records.AnswerBook
	if c.Book != nil {
		answers = c.Book.Answers
	}
	c.Book = &records.Book{
		Medicines:  records.NewMedicines(c.Local, c.Reminders),
		Contacts:   records.NewContacts(c.Local),
		Doctors:    records.NewDoctors(c.Local),
		Insurance:  records.NewInsurance(c.Local),
		Pharmacies: records.NewPharmacies(c.Local),
		Answers:    answers,
	}
}

// SaveSettings persists settings and rebuilds the services using them.
func (c *Context) SaveSettings(ctx context.Context, settings models.Settings) error {
	if err := storage.SaveSettings(ctx, c.Local, settings); err != nil {
		return err
	}
	c.apply(settings)
	return nil
}

// Answers opens the remote store on first use and returns the answer book.
func (c *Context) Answers(ctx context.Context) (*records.AnswerBook, error) {
	if c.Book.Answers != nil {
		return c.Book.Answers, nil
	}
	dsn, err := keyring.Resolve(c.Remote)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve remote store: %w", err)
	}
	remote, err := storage.OpenRemote(ctx, dsn, c.Local)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote store %s: %w", storage.Describe(dsn), err)
	}
	logger.Debug("Opened remote store", "remote", storage.Describe(dsn))

	c.remote = remote
	book := records.NewAnswerBook(c.Local, remote, c.Catalog, c.Settings.ProfileID)
	book.Mirror = strings.TrimSpace(dsn) != ""
	c.Book.Answers = book
	return book, nil
}

// Close releases the remote and local stores.
func (c *Context) Close() error {
	var firstErr error
	if c.remote != nil {
		firstErr = c.remote.Close()
		c.remote = nil
	}
	if c.Local != nil {
		if err := c.Local.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.Local = nil
		c.Book = nil
	}
	return firstErr
}

// Now returns the current time in the configured timezone.
func (c *Context) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// PerformAutomaticBackup creates a backup and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, err := backup.NewManager(c.DBPath).Create(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question on Out and reads the answer from In.
func (c *Context) Confirm(prompt string) bool {
	fmt.Fprintf(c.Out, "%s [y/N]: ", prompt)
	var response string
	if _, err := fmt.Fscanln(c.In, &response); err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
