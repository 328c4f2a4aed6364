package backups

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/carelog/internal/backup"
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

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "No backups found.") {
		t.Errorf("unexpected empty list output: %s", out.String())
	}

	out.Reset()
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Backup created: carelog-") {
		t.Errorf("unexpected create output: %s", out.String())
	}

	out.Reset()
	if err := (&BackupListCmd{}).Run(ctx); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out.String(), "Available backups (1 total") {
		t.Errorf("unexpected list output: %s", out.String())
	}
}

func TestBackupRestore(t *testing.T) {
	ctx, out := setupTestContext(t)
	bg := context.Background()

	if _, err := ctx.Book.Doctors.Add(bg, models.Doctor{Name: "Dr. Before"}); err != nil {
		t.Fatal(err)
	}
	info, err := backup.NewManager(ctx.DBPath).Create()
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := ctx.Book.Doctors.Add(bg, models.Doctor{Name: "Dr. After"}); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&BackupRestoreCmd{BackupFile: info.Name, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "✓ Database restored successfully!") {
		t.Errorf("unexpected restore output: %s", out.String())
	}
	if !strings.Contains(out.String(), "Previous database saved as") {
		t.Errorf("expected pre-restore backup, got: %s", out.String())
	}

	if err := ctx.Load(bg); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	doctors, err := ctx.Book.Doctors.List(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(doctors) != 1 || doctors[0].Name != "Dr. Before" {
		t.Errorf("expected only the backed up doctor, got %+v", doctors)
	}
}

func TestBackupRestoreCancelled(t *testing.T) {
	ctx, out := setupTestContext(t)
	ctx.In = strings.NewReader("n\n")

	info, err := backup.NewManager(ctx.DBPath).Create()
	if err != nil {
		t.Fatal(err)
	}
	if err := (&BackupRestoreCmd{BackupFile: info.Name}).Run(ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if !strings.Contains(out.String(), "Restore cancelled.") {
		t.Errorf("unexpected output: %s", out.String())
	}
	if ctx.Local == nil {
		t.Error("cancelled restore should leave the database open")
	}
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&BackupRestoreCmd{BackupFile: "carelog-20000101-000000.db", Yes: true}).Run(ctx); err == nil {
		t.Error("expected restoring a missing backup to fail")
	}
}
