package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/carelog/internal/logger"
	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/records"
	"github.com/julianstephens/carelog/internal/scheduler"
	"github.com/julianstephens/carelog/internal/tui/components/answerlist"
	"github.com/julianstephens/carelog/internal/tui/components/medlist"
	"github.com/julianstephens/carelog/internal/tui/components/schedule"
)

type SessionState int

const (
	StateMedicines SessionState = iota
	StateReminders
	StateAnswers
	StateEditMedicine
	StateEditAnswer
	StateConfirmDelete
)

const tabCount = 3

var tabTitles = []string{"Medicines", "Reminders", "Answers"}

// chromeHeight is the number of lines taken by the tabs, status and help.
const chromeHeight = 5

const refreshInterval = time.Minute

type refreshMsg time.Time

// Deps are the services the TUI reads and edits.
type Deps struct {
	Medicines *records.Medicines
	Scheduler *scheduler.Scheduler
	Answers   *records.AnswerBook
	Location  *time.Location
}

type Model struct {
	ctx  context.Context
	deps Deps

	state    SessionState
	tab      SessionState
	keys     KeyMap
	help     help.Model
	medList  medlist.Model
	schedule schedule.Model
	answers  answerlist.Model

	form         *huh.Form
	medForm      *MedicineFormModel
	editing      models.Medicine
	answerForm   *AnswerFormModel
	editingIndex int
	deleteID     string
	deleteName   string

	status   string
	err      string
	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, deps Deps) Model {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	m := Model{
		ctx:      ctx,
		deps:     deps,
		state:    StateMedicines,
		tab:      StateMedicines,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		medList:  medlist.New(nil, 0, 0),
		schedule: schedule.New(0, 0, deps.Location),
		answers:  answerlist.New(0, 0),
	}
	m.reload()
	return m
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateMedicines:
		keys = append(keys, m.keys.Add, m.keys.Edit, m.keys.Delete)
	case StateAnswers:
		keys = append(keys, m.keys.Edit, m.keys.Sync)
	case StateConfirmDelete:
		keys = []key.Binding{m.keys.Confirm, m.keys.Cancel}
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help, m.keys.Refresh}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	switch m.state {
	case StateMedicines:
		actions = []key.Binding{m.keys.Add, m.keys.Edit, m.keys.Delete}
	case StateAnswers:
		actions = []key.Binding{m.keys.Edit, m.keys.Sync}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m *Model) reload() {
	m.reloadMedicines()
	m.reloadReminders()
	m.reloadAnswers()
}

func (m *Model) reloadMedicines() {
	if m.deps.Medicines == nil {
		return
	}
	meds, err := m.deps.Medicines.List(m.ctx)
	if err != nil {
		m.fail("Failed to load medicines", err)
		return
	}
	m.medList.SetMedicines(meds)
}

func (m *Model) reloadReminders() {
	if m.deps.Scheduler == nil {
		return
	}
	pending, err := m.deps.Scheduler.Pending(m.ctx)
	if err != nil {
		m.fail("Failed to load reminders", err)
		return
	}
	m.schedule.SetNotifications(pending)
}

func (m *Model) reloadAnswers() {
	if m.deps.Answers == nil {
		return
	}
	view, err := m.deps.Answers.View(m.ctx)
	if err != nil {
		m.fail("Failed to load answers", err)
		return
	}
	drafts, err := m.deps.Answers.Drafts(m.ctx)
	if err != nil {
		m.fail("Failed to load drafts", err)
		return
	}
	m.answers.SetAnswers(m.deps.Answers.Catalog().All(), view, drafts)
}

func (m *Model) fail(msg string, err error) {
	logger.Error(msg, "error", err)
	m.status = ""
	m.err = msg + ": " + err.Error()
}

func (m *Model) notify(msg string) {
	m.err = ""
	m.status = msg
}
