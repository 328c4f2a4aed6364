package reminders

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/carelog/internal/cli"
	"github.com/julianstephens/carelog/internal/models"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	ctx := cli.New(filepath.Join(t.TempDir(), "carelog.db"), "")
	ctx.Out = &out
	if err := ctx.Init(context.Background()); err != nil {
		t.Fatalf("failed to init: %v", err)
	}
	t.Cleanup(func() { ctx.Close() })
	return ctx, &out
}

func addMedicine(t *testing.T, ctx *cli.Context, m models.Medicine) models.Medicine {
	t.Helper()
	saved, err := ctx.Book.Medicines.Add(context.Background(), m)
	if err != nil {
		t.Fatalf("failed to add %s: %v", m.Name, err)
	}
	return saved
}

func TestReminderList(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&ReminderListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No reminders scheduled.") {
		t.Errorf("unexpected empty output: %s", out.String())
	}

	addMedicine(t, ctx, models.Medicine{Name: "Metformin", Dosage: "500mg", Time: "8am", Weekdays: []models.Weekday{models.Monday, models.Friday}})
	addMedicine(t, ctx, models.Medicine{Name: "Cetirizine"})

	out.Reset()
	if err := (&ReminderListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	if !strings.Contains(got, "Scheduled reminders (2):") {
		t.Errorf("unexpected header: %s", got)
	}
	if strings.Count(got, "Metformin (500mg)") != 2 {
		t.Errorf("expected one line per weekday, got: %s", got)
	}
	if strings.Contains(got, "Cetirizine") {
		t.Errorf("medicine without a time should have no reminders: %s", got)
	}
}

func TestReminderExportStdout(t *testing.T) {
	ctx, out := setupTestContext(t)
	addMedicine(t, ctx, models.Medicine{Name: "Metformin", Time: "9pm"})

	if err := (&ReminderExportCmd{}).Run(ctx); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "SUMMARY:Metformin", "RRULE:FREQ=DAILY"} {
		if !strings.Contains(got, want) {
			t.Errorf("export missing %q:\n%s", want, got)
		}
	}
}

func TestReminderReset(t *testing.T) {
	ctx, out := setupTestContext(t)
	bg := context.Background()

	med := addMedicine(t, ctx, models.Medicine{Name: "Metformin", Time: "8am", Weekdays: []models.Weekday{models.Monday, models.Friday}})
	before := med.NotificationIDs

	if err := (&ReminderResetCmd{}).Run(ctx); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !strings.Contains(out.String(), "Reminders reset: 2 scheduled.") {
		t.Errorf("unexpected output: %s", out.String())
	}

	pending, err := ctx.Scheduler.Pending(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending reminders, got %d", len(pending))
	}
	for _, n := range pending {
		for _, old := range before {
			if string(n.ID) == old {
				t.Errorf("handle %s survived the reset", old)
			}
		}
	}

	got, err := ctx.Book.Medicines.Get(bg, med.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.NotificationIDs) != 2 {
		t.Errorf("expected medicine to hold 2 new handles, got %v", got.NotificationIDs)
	}
}
