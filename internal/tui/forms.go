package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/reminders"
	"github.com/julianstephens/carelog/internal/timerule"
)

const (
	scheduleNone   = "none"
	scheduleDaily  = "daily"
	scheduleWeekly = "weekly"
	scheduleOnce   = "once"
)

type MedicineFormModel struct {
	Name     string
	Dosage   string
	Time     string
	Schedule string
	Weekdays string
	Date     string
	Notes    string
}

type AnswerFormModel struct {
	Answer  string
	Summary string
}

func formFromMedicine(m models.Medicine) *MedicineFormModel {
	f := &MedicineFormModel{
		Name:     m.Name,
		Dosage:   m.Dosage,
		Time:     m.Time,
		Schedule: scheduleNone,
		Weekdays: models.FormatWeekdays(m.Weekdays),
		Date:     m.Date,
		Notes:    m.Notes,
	}
	if rule, err := reminders.RuleFor(m); err == nil {
		switch rule.Kind {
		case models.RecurrenceDaily:
			f.Schedule = scheduleDaily
		case models.RecurrenceWeekly:
			f.Schedule = scheduleWeekly
		case models.RecurrenceOneTime:
			f.Schedule = scheduleOnce
		}
	}
	return f
}

// medicineFromForm applies the form to base. Fields that do not belong to
// the chosen schedule are cleared.
func medicineFromForm(f *MedicineFormModel, base models.Medicine) (models.Medicine, error) {
	m := base
	m.Name = strings.TrimSpace(f.Name)
	m.Dosage = strings.TrimSpace(f.Dosage)
	m.Notes = strings.TrimSpace(f.Notes)
	m.Time = strings.TrimSpace(f.Time)
	m.Date = ""
	m.Weekdays = nil

	if f.Schedule == scheduleNone {
		m.Time = ""
		return m, nil
	}
	if m.Time == "" {
		return m, fmt.Errorf("a reminder time is required for a %s schedule", f.Schedule)
	}
	if _, err := timerule.ParseTimeOfDayStrict(m.Time); err != nil {
		return m, fmt.Errorf("invalid reminder time %q: %w", m.Time, err)
	}

	switch f.Schedule {
	case scheduleDaily:
	case scheduleWeekly:
		days, err := models.ParseWeekdays(f.Weekdays)
		if err != nil {
			return m, err
		}
		if len(days) == 0 {
			return m, fmt.Errorf("choose at least one weekday")
		}
		m.Weekdays = days
	case scheduleOnce:
		date := strings.TrimSpace(f.Date)
		if _, err := models.ParseDate(date); err != nil {
			return m, err
		}
		m.Date = date
	default:
		return m, fmt.Errorf("unknown schedule %q", f.Schedule)
	}
	return m, nil
}

func NewMedicineForm(f *MedicineFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&f.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Dosage").
				Placeholder("10mg").
				Value(&f.Dosage),
			huh.NewSelect[string]().
				Title("Reminder").
				Options(
					huh.NewOption("No reminder", scheduleNone),
					huh.NewOption("Every day", scheduleDaily),
					huh.NewOption("Selected weekdays", scheduleWeekly),
					huh.NewOption("Once", scheduleOnce),
				).
				Value(&f.Schedule),
			huh.NewInput().
				Title("Time").
				Placeholder("8:30am").
				Value(&f.Time).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := timerule.ParseTimeOfDayStrict(s)
					return err
				}),
			huh.NewInput().
				Title("Weekdays").
				Description("For weekly reminders, e.g. mon,wed,fri").
				Value(&f.Weekdays).
				Validate(func(s string) error {
					_, err := models.ParseWeekdays(s)
					return err
				}),
			huh.NewInput().
				Title("Date").
				Description("For one-time reminders (YYYY-MM-DD)").
				Value(&f.Date).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return nil
					}
					_, err := models.ParseDate(strings.TrimSpace(s))
					return err
				}),
			huh.NewText().
				Title("Notes").
				Lines(2).
				Value(&f.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}

func NewAnswerForm(q models.Question, f *AnswerFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(q.Prompt).
				Description(q.Section).
				Lines(3).
				Value(&f.Answer),
			huh.NewInput().
				Title(q.SummaryLabel).
				Description("Short summary shown in lists").
				Value(&f.Summary),
		),
	).WithTheme(huh.ThemeDracula())
}
