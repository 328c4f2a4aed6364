package medlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/carelog/internal/export"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/timerule"
)

type AddMedicineMsg struct{}

type EditMedicineMsg struct {
	Medicine models.Medicine
}

type DeleteMedicineMsg struct {
	ID   string
	Name string
}

type Item struct {
	Medicine models.Medicine
}

func (i Item) Title() string { return i.Medicine.Label() }

func (i Item) Description() string {
	if !i.Medicine.HasReminder() {
		return "No reminder"
	}
	desc := fmt.Sprintf("%s at %s | %d reminder(s)",
		export.ScheduleLabel(i.Medicine),
		timerule.ParseTimeOfDay(i.Medicine.Time).Format12(),
		len(i.Medicine.NotificationIDs))
	if i.Medicine.Notes != "" {
		desc += " | " + i.Medicine.Notes
	}
	return desc
}

func (i Item) FilterValue() string { return i.Medicine.Name }

type KeyMap struct {
	Add    key.Binding
	Edit   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(meds []models.Medicine, width, height int) Model {
	l := list.New(items(meds), list.NewDefaultDelegate(), width, height)
	l.Title = "Medicines"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Edit, keys.Delete}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func items(meds []models.Medicine) []list.Item {
	out := make([]list.Item, len(meds))
	for i, m := range meds {
		out[i] = Item{Medicine: m}
	}
	return out
}

func (m *Model) SetMedicines(meds []models.Medicine) {
	m.list.SetItems(items(meds))
}

// Filtering reports whether the filter input has focus.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Len() int {
	return len(m.list.Items())
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddMedicineMsg{} }
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditMedicineMsg{Medicine: i.Medicine} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteMedicineMsg{ID: i.Medicine.ID, Name: i.Medicine.Name} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No medicines yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
