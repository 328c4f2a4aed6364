package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/carelog/internal/docstore/sqlite"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/questions"
	"github.com/julianstephens/carelog/internal/records"
	"github.com/julianstephens/carelog/internal/reminders"
	"github.com/julianstephens/carelog/internal/scheduler"
	"github.com/julianstephens/carelog/internal/tui/components/answerlist"
	"github.com/julianstephens/carelog/internal/tui/components/medlist"
)

func setupDeps(t *testing.T) Deps {
	t.Helper()
	store := sqlite.New(filepath.Join(t.TempDir(), "carelog.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	catalog, err := questions.Default()
	if err != nil {
		t.Fatalf("failed to load questions: %v", err)
	}
	sched := scheduler.New(store, time.UTC)
	return Deps{
		Medicines: records.NewMedicines(store, reminders.New(sched, time.UTC, "Medication reminder")),
		Scheduler: sched,
		Answers:   records.NewAnswerBook(store, store, catalog, "profile-1"),
		Location:  time.UTC,
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg. For key presses it also delivers the component
// message the returned command produces, as the runtime would.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if _, ok := msg.(tea.KeyMsg); !ok || cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case medlist.AddMedicineMsg, medlist.EditMedicineMsg, medlist.DeleteMedicineMsg,
		answerlist.EditAnswerMsg, answerlist.SyncMsg:
		next, _ = m.Update(out)
		m = next.(Model)
	}
	return m
}

func TestTabSwitching(t *testing.T) {
	m := NewModel(context.Background(), setupDeps(t))
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	tests := []struct {
		key  string
		want SessionState
	}{
		{"tab", StateReminders},
		{"tab", StateAnswers},
		{"tab", StateMedicines},
		{"shift+tab", StateAnswers},
	}
	for _, tt := range tests {
		m = send(t, m, keyPress(tt.key))
		if m.state != tt.want || m.tab != tt.want {
			t.Fatalf("after %s: state = %d, tab = %d, want %d", tt.key, m.state, m.tab, tt.want)
		}
	}

	view := m.View()
	for _, title := range tabTitles {
		if !strings.Contains(view, title) {
			t.Errorf("view is missing tab %q", title)
		}
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(context.Background(), setupDeps(t))
	next, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if !next.(Model).quitting {
		t.Error("model should be quitting")
	}
	if next.View() != "" {
		t.Error("quitting model should render nothing")
	}
}

func TestDeleteMedicine(t *testing.T) {
	deps := setupDeps(t)
	bg := context.Background()
	med, err := deps.Medicines.Add(bg, models.Medicine{Name: "Metformin", Time: "8am"})
	if err != nil {
		t.Fatal(err)
	}

	m := NewModel(bg, deps)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	if m.medList.Len() != 1 || m.schedule.Len() != 1 {
		t.Fatalf("expected 1 medicine and 1 reminder, got %d and %d", m.medList.Len(), m.schedule.Len())
	}

	m = send(t, m, keyPress("d"))
	if m.state != StateConfirmDelete || m.deleteID != med.ID {
		t.Fatalf("expected delete confirmation for %s, state = %d", med.ID, m.state)
	}
	if !strings.Contains(m.View(), "Delete Metformin") {
		t.Errorf("confirmation view missing medicine name:\n%s", m.View())
	}

	m = send(t, m, keyPress("n"))
	if m.state != StateMedicines || m.medList.Len() != 1 {
		t.Fatal("cancelling should keep the medicine")
	}

	m = send(t, m, keyPress("d"))
	m = send(t, m, keyPress("y"))
	if m.state != StateMedicines {
		t.Errorf("state = %d after delete", m.state)
	}
	if m.medList.Len() != 0 || m.schedule.Len() != 0 {
		t.Errorf("expected medicine and reminder removed, got %d and %d", m.medList.Len(), m.schedule.Len())
	}
	if m.err != "" {
		t.Errorf("unexpected error: %s", m.err)
	}
}

func TestEditMedicineOpensForm(t *testing.T) {
	deps := setupDeps(t)
	bg := context.Background()
	if _, err := deps.Medicines.Add(bg, models.Medicine{Name: "Metformin", Time: "8am", Weekdays: []models.Weekday{models.Monday}}); err != nil {
		t.Fatal(err)
	}

	m := NewModel(bg, deps)
	m = send(t, m, keyPress("e"))
	if m.state != StateEditMedicine {
		t.Fatalf("state = %d, want StateEditMedicine", m.state)
	}
	if m.medForm.Schedule != scheduleWeekly || m.medForm.Weekdays != "mon" {
		t.Errorf("form = %+v", m.medForm)
	}

	m = send(t, m, keyPress("esc"))
	if m.state != StateMedicines {
		t.Errorf("esc should close the form, state = %d", m.state)
	}
}

func TestSaveMedicineFromForm(t *testing.T) {
	deps := setupDeps(t)
	m := NewModel(context.Background(), deps)

	m.editing = models.Medicine{}
	m.medForm = &MedicineFormModel{Name: "Vitamin D", Time: "9:15pm", Schedule: scheduleWeekly, Weekdays: "tue,thu"}
	m.saveMedicine()
	if m.err != "" {
		t.Fatalf("unexpected error: %s", m.err)
	}
	if m.medList.Len() != 1 || m.schedule.Len() != 2 {
		t.Errorf("expected 1 medicine with 2 reminders, got %d and %d", m.medList.Len(), m.schedule.Len())
	}

	m.medForm = &MedicineFormModel{Name: "Bad", Time: "late", Schedule: scheduleDaily}
	m.saveMedicine()
	if !strings.Contains(m.err, "Medicine not saved") {
		t.Errorf("expected a save error, got %q", m.err)
	}
	if m.medList.Len() != 1 {
		t.Error("invalid medicine should not be stored")
	}
}

func TestAnswerDraftAndSync(t *testing.T) {
	deps := setupDeps(t)
	m := NewModel(context.Background(), deps)
	m = send(t, m, keyPress("tab"))
	m = send(t, m, keyPress("tab"))

	m = send(t, m, keyPress("e"))
	if m.state != StateEditAnswer || m.editingIndex != 0 {
		t.Fatalf("expected answer form for question 0, state = %d index = %d", m.state, m.editingIndex)
	}
	m.answerForm.Answer = "Ada Lovelace"
	m.answerForm.Summary = "Ada"
	m.saveAnswer()
	m.state = m.tab

	drafts, err := deps.Answers.Drafts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if drafts[0].Answer != "Ada Lovelace" {
		t.Fatalf("draft = %+v", drafts[0])
	}

	m = send(t, m, keyPress("s"))
	if !strings.Contains(m.status, "Synced 1 changed answer(s).") {
		t.Errorf("status = %q, err = %q", m.status, m.err)
	}
	drafts, err = deps.Answers.Drafts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(drafts) != 0 {
		t.Errorf("expected drafts cleared after sync, got %v", drafts)
	}

	m = send(t, m, keyPress("s"))
	if m.status != "Answers are up to date." {
		t.Errorf("status = %q", m.status)
	}
}

func TestMedicineFromForm(t *testing.T) {
	base := models.Medicine{ID: "m1", Name: "Old", NotificationIDs: []string{"h1"}}
	tests := []struct {
		name    string
		form    MedicineFormModel
		want    models.Medicine
		wantErr bool
	}{
		{
			name: "no reminder clears time",
			form: MedicineFormModel{Name: "Aspirin", Time: "8am", Schedule: scheduleNone, Weekdays: "mon"},
			want: models.Medicine{ID: "m1", Name: "Aspirin", NotificationIDs: []string{"h1"}},
		},
		{
			name: "daily",
			form: MedicineFormModel{Name: " Aspirin ", Dosage: "81mg", Time: "8am", Schedule: scheduleDaily, Date: "2026-01-01"},
			want: models.Medicine{ID: "m1", Name: "Aspirin", Dosage: "81mg", Time: "8am", NotificationIDs: []string{"h1"}},
		},
		{
			name: "weekly",
			form: MedicineFormModel{Name: "Aspirin", Time: "20:00", Schedule: scheduleWeekly, Weekdays: "fri,mon"},
			want: models.Medicine{ID: "m1", Name: "Aspirin", Time: "20:00", Weekdays: []models.Weekday{models.Monday, models.Friday}, NotificationIDs: []string{"h1"}},
		},
		{
			name: "once",
			form: MedicineFormModel{Name: "Aspirin", Time: "7am", Schedule: scheduleOnce, Date: "2026-03-01", Weekdays: "mon"},
			want: models.Medicine{ID: "m1", Name: "Aspirin", Time: "7am", Date: "2026-03-01", NotificationIDs: []string{"h1"}},
		},
		{name: "missing time", form: MedicineFormModel{Name: "Aspirin", Schedule: scheduleDaily}, wantErr: true},
		{name: "unparseable time", form: MedicineFormModel{Name: "Aspirin", Time: "noonish", Schedule: scheduleDaily}, wantErr: true},
		{name: "weekly without days", form: MedicineFormModel{Name: "Aspirin", Time: "8am", Schedule: scheduleWeekly}, wantErr: true},
		{name: "once with bad date", form: MedicineFormModel{Name: "Aspirin", Time: "8am", Schedule: scheduleOnce, Date: "tomorrow"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := medicineFromForm(&tt.form, base)
			if (err != nil) != tt.wantErr {
				t.Fatalf("medicineFromForm() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Name != tt.want.Name || got.Dosage != tt.want.Dosage || got.Time != tt.want.Time ||
				got.Date != tt.want.Date || models.FormatWeekdays(got.Weekdays) != models.FormatWeekdays(tt.want.Weekdays) ||
				got.ID != tt.want.ID || len(got.NotificationIDs) != len(tt.want.NotificationIDs) {
				t.Errorf("medicineFromForm() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormFromMedicine(t *testing.T) {
	tests := []struct {
		med  models.Medicine
		want string
	}{
		{models.Medicine{Name: "A"}, scheduleNone},
		{models.Medicine{Name: "A", Time: "8am"}, scheduleDaily},
		{models.Medicine{Name: "A", Time: "8am", Weekdays: []models.Weekday{models.Sunday}}, scheduleWeekly},
		{models.Medicine{Name: "A", Time: "8am", Date: "2026-03-01"}, scheduleOnce},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := formFromMedicine(tt.med).Schedule; got != tt.want {
				t.Errorf("Schedule = %q, want %q", got, tt.want)
			}
		})
	}
}
