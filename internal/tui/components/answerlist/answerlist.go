package answerlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/carelog/internal/models"
)

type EditAnswerMsg struct {
	Question models.Question
	Slot     models.AnswerSlot
}

type SyncMsg struct{}

type Item struct {
	Question models.Question
	Slot     models.AnswerSlot
	Draft    bool
}

func (i Item) Title() string {
	title := fmt.Sprintf("%d. %s", i.Question.Index+1, i.Question.Prompt)
	if i.Draft {
		title = "* " + title
	}
	return title
}

func (i Item) Description() string {
	if i.Slot.IsEmpty() {
		return i.Question.Section + " | (no answer)"
	}
	if i.Slot.Summary != "" {
		return fmt.Sprintf("%s | %s: %s", i.Question.Section, i.Question.SummaryLabel, i.Slot.Summary)
	}
	return i.Question.Section + " | " + i.Slot.Answer
}

func (i Item) FilterValue() string { return i.Question.Section + " " + i.Question.Prompt }

type KeyMap struct {
	Edit key.Binding
	Sync key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e", "answer"),
		),
		Sync: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sync"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Answers"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Edit, keys.Sync}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

// SetAnswers shows one item per question. slots is the merged view and
// drafts marks the answers not yet synced.
func (m *Model) SetAnswers(questions []models.Question, slots []models.AnswerSlot, drafts models.AnswerSet) {
	items := make([]list.Item, len(questions))
	for i, q := range questions {
		var slot models.AnswerSlot
		if q.Index < len(slots) {
			slot = slots[q.Index]
		}
		_, draft := drafts[q.Index]
		items[i] = Item{Question: q, Slot: slot, Draft: draft}
	}
	m.list.SetItems(items)
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Edit):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return EditAnswerMsg{Question: i.Question, Slot: i.Slot} }
			}
		case key.Matches(msg, m.keys.Sync):
			return m, func() tea.Msg { return SyncMsg{} }
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  The question list is empty."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
