package models

import (
	"fmt"
	"strings"
	"time"
)

// Medicine is a medication record. Time holds the reminder time exactly as
// entered; NotificationIDs holds the scheduler handles currently registered
// for it.
type Medicine struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Dosage          string    `json:"dosage,omitempty"`
	Time            string    `json:"time,omitempty"`
	Date            string    `json:"date,omitempty"` // YYYY-MM-DD (for one-time reminders)
	Weekdays        []Weekday `json:"weekdays,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	NotificationIDs []string  `json:"notification_ids,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (m *Medicine) GetID() string   { return m.ID }
func (m *Medicine) SetID(id string) { m.ID = id }

func (m *Medicine) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("medicine name cannot be empty")
	}
	if m.Date != "" {
		if _, err := ParseDate(m.Date); err != nil {
			return err
		}
	}
	for _, wd := range m.Weekdays {
		if !wd.Valid() {
			return fmt.Errorf("invalid weekday %d (expected 1-7, Sunday=1)", int(wd))
		}
	}
	return nil
}

// HasReminder reports whether a reminder time was entered.
func (m *Medicine) HasReminder() bool {
	return strings.TrimSpace(m.Time) != ""
}

// Label returns the name with the dosage, if any.
func (m *Medicine) Label() string {
	if m.Dosage == "" {
		return m.Name
	}
	return fmt.Sprintf("%s (%s)", m.Name, m.Dosage)
}
