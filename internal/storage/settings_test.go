package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/carelog/internal/docstore/sqlite"
)

func setupLocal(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := InitLocal(filepath.Join(t.TempDir(), "carelog.db"))
	if err != nil {
		t.Fatalf("InitLocal failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadSettingsDefaults(t *testing.T) {
	s := setupLocal(t)

	settings, err := LoadSettings(context.Background(), s)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if settings != DefaultSettings() {
		t.Errorf("expected defaults, got %+v", settings)
	}
}

func TestSaveAndLoadSettings(t *testing.T) {
	s := setupLocal(t)
	ctx := context.Background()

	want := DefaultSettings()
	want.Timezone = "UTC"
	want.NotificationsEnabled = false
	want.ProfileID = "profile-1"

	if err := SaveSettings(ctx, s, want); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := LoadSettings(ctx, s)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got != want {
		t.Errorf("LoadSettings() = %+v, want %+v", got, want)
	}
}

func TestSaveSettingsRejectsBadTimezone(t *testing.T) {
	s := setupLocal(t)
	settings := DefaultSettings()
	settings.Timezone = "Mars/Olympus_Mons"

	if err := SaveSettings(context.Background(), s, settings); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestEnsureSettingsAssignsProfileOnce(t *testing.T) {
	s := setupLocal(t)
	ctx := context.Background()

	first, err := EnsureSettings(ctx, s)
	if err != nil {
		t.Fatalf("EnsureSettings failed: %v", err)
	}
	if first.ProfileID == "" {
		t.Fatal("expected a profile id")
	}
	second, err := EnsureSettings(ctx, s)
	if err != nil {
		t.Fatalf("EnsureSettings failed: %v", err)
	}
	if second.ProfileID != first.ProfileID {
		t.Errorf("profile id changed: %q -> %q", first.ProfileID, second.ProfileID)
	}
}

func TestLocation(t *testing.T) {
	loc, err := Location(DefaultSettings())
	if err != nil || loc != time.Local {
		t.Errorf("expected time.Local, got %v (%v)", loc, err)
	}
	utc := DefaultSettings()
	utc.Timezone = "UTC"
	loc, err = Location(utc)
	if err != nil || loc.String() != "UTC" {
		t.Errorf("expected UTC, got %v (%v)", loc, err)
	}
}
