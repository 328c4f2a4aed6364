package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/carelog/internal/constants"
	"github.com/julianstephens/carelog/internal/docstore"
	"github.com/julianstephens/carelog/internal/models"
)

func DefaultSettings() models.Settings {
	return models.Settings{
		Timezone:             constants.DefaultTimezone,
		NotificationsEnabled: constants.DefaultNotificationsEnabled,
		ReminderTitle:        constants.ReminderTitle,
	}
}

// LoadSettings reads the settings document, filling unset fields with
// defaults. A missing document yields the defaults.
func LoadSettings(ctx context.Context, store docstore.Store) (models.Settings, error) {
	settings := DefaultSettings()

	doc, err := store.Get(ctx, constants.CollectionSettings, constants.SettingsDocumentID)
	if errors.Is(err, docstore.ErrNotFound) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := docstore.Decode(doc, &settings); err != nil {
		return settings, err
	}
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.ReminderTitle == "" {
		settings.ReminderTitle = constants.ReminderTitle
	}
	return settings, nil
}

func SaveSettings(ctx context.Context, store docstore.Store, settings models.Settings) error {
	if _, err := Location(settings); err != nil {
		return err
	}
	doc, err := docstore.Encode(settings)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, constants.CollectionSettings, constants.SettingsDocumentID, doc, docstore.SetOptions{}); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// EnsureSettings writes defaults with a fresh profile id when no settings
// exist yet, and assigns a profile id to settings that lack one.
func EnsureSettings(ctx context.Context, store docstore.Store) (models.Settings, error) {
	settings, err := LoadSettings(ctx, store)
	if err != nil {
		return settings, err
	}
	if settings.ProfileID != "" {
		return settings, nil
	}
	settings.ProfileID = uuid.New().String()
	if err := SaveSettings(ctx, store, settings); err != nil {
		return settings, err
	}
	return settings, nil
}

// Location resolves the configured timezone.
func Location(settings models.Settings) (*time.Location, error) {
	if settings.Timezone == "" || settings.Timezone == constants.DefaultTimezone {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	return loc, nil
}
