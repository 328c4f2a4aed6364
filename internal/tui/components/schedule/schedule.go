package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/carelog/internal/scheduler"
)

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(22)

	bodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)

	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// Model shows pending reminders in firing order.
type Model struct {
	viewport      viewport.Model
	notifications []scheduler.Notification
	loc           *time.Location
}

func New(width, height int, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	return Model{viewport: viewport.New(width, height), loc: loc}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.notifications) == 0 {
		return "No reminders scheduled.\nAdd a reminder time to a medicine to schedule one."
	}
	return m.viewport.View()
}

func (m Model) Len() int {
	return len(m.notifications)
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
	m.Render()
}

func (m *Model) SetNotifications(ns []scheduler.Notification) {
	m.notifications = ns
	m.Render()
}

func (m *Model) Render() {
	var b strings.Builder
	for _, n := range m.notifications {
		next := "not firing"
		if !n.NextFire.IsZero() {
			next = n.NextFire.In(m.loc).Format("Mon Jan 2 3:04pm")
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			timeStyle.Render(next),
			bodyStyle.Render(n.Content.Body),
			ruleStyle.Render(n.Trigger.Describe()),
		)
	}
	m.viewport.SetContent(b.String())
}
