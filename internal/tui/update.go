package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/carelog/internal/models"
	"github.com/julianstephens/carelog/internal/tui/components/answerlist"
	"github.com/julianstephens/carelog/internal/tui/components/medlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		h := max(msg.Height-chromeHeight, 1)
		m.medList.SetSize(msg.Width, h)
		m.schedule.SetSize(msg.Width, h)
		m.answers.SetSize(msg.Width, h)

	case refreshMsg:
		m.reloadReminders()
		return m, tick()
	}

	switch m.state {
	case StateEditMedicine:
		return m.updateMedicineForm(msg)
	case StateEditAnswer:
		return m.updateAnswerForm(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	switch msg := msg.(type) {
	case medlist.AddMedicineMsg:
		m.editing = models.Medicine{}
		m.medForm = formFromMedicine(m.editing)
		m.medForm.Schedule = scheduleDaily
		m.form = NewMedicineForm(m.medForm)
		m.state = StateEditMedicine
		return m, m.form.Init()

	case medlist.EditMedicineMsg:
		m.editing = msg.Medicine
		m.medForm = formFromMedicine(msg.Medicine)
		m.form = NewMedicineForm(m.medForm)
		m.state = StateEditMedicine
		return m, m.form.Init()

	case medlist.DeleteMedicineMsg:
		m.deleteID = msg.ID
		m.deleteName = msg.Name
		m.state = StateConfirmDelete
		return m, nil

	case answerlist.EditAnswerMsg:
		m.editingIndex = msg.Question.Index
		m.answerForm = &AnswerFormModel{Answer: msg.Slot.Answer, Summary: msg.Slot.Summary}
		m.form = NewAnswerForm(msg.Question, m.answerForm)
		m.state = StateEditAnswer
		return m, m.form.Init()

	case answerlist.SyncMsg:
		m.syncAnswers()
		return m, nil

	case tea.KeyMsg:
		if m.filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.switchTab((m.tab + 1) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.switchTab((m.tab - 1 + tabCount) % tabCount)
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.reload()
			m.notify("Refreshed.")
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.tab {
	case StateMedicines:
		m.medList, cmd = m.medList.Update(msg)
	case StateReminders:
		m.schedule, cmd = m.schedule.Update(msg)
	case StateAnswers:
		m.answers, cmd = m.answers.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	switch m.tab {
	case StateMedicines:
		return m.medList.Filtering()
	case StateAnswers:
		return m.answers.Filtering()
	}
	return false
}

func (m *Model) switchTab(tab SessionState) {
	m.tab = tab
	m.state = tab
	if tab == StateReminders {
		m.reloadReminders()
	}
}

// updateForm forwards msg to the open form. done is true once the form
// was submitted or aborted; esc aborts.
func (m *Model) updateForm(msg tea.Msg) (cmd tea.Cmd, done bool) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.tab
		return nil, true
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted, huh.StateAborted:
		m.state = m.tab
		return cmd, true
	}
	return cmd, false
}

func (m Model) updateMedicineForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, done := m.updateForm(msg)
	if done && m.form.State == huh.StateCompleted {
		m.saveMedicine()
	}
	return m, cmd
}

func (m Model) updateAnswerForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd, done := m.updateForm(msg)
	if done && m.form.State == huh.StateCompleted {
		m.saveAnswer()
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Confirm):
		m.deleteMedicine(m.deleteID, m.deleteName)
		m.deleteID, m.deleteName = "", ""
		m.state = m.tab
	case key.Matches(keyMsg, m.keys.Cancel):
		m.deleteID, m.deleteName = "", ""
		m.state = m.tab
	}
	return m, nil
}

func (m *Model) saveMedicine() {
	med, err := medicineFromForm(m.medForm, m.editing)
	if err != nil {
		m.fail("Medicine not saved", err)
		return
	}
	if med.ID == "" {
		med, err = m.deps.Medicines.Add(m.ctx, med)
	} else {
		med, err = m.deps.Medicines.Update(m.ctx, med)
	}
	if err != nil {
		m.fail("Medicine not saved", err)
		return
	}
	m.reloadMedicines()
	m.reloadReminders()
	m.notify(fmt.Sprintf("Saved %s (%d reminder(s) scheduled).", med.Label(), len(med.NotificationIDs)))
}

func (m *Model) deleteMedicine(id, name string) {
	if err := m.deps.Medicines.Delete(m.ctx, id); err != nil {
		m.fail("Failed to delete medicine", err)
		return
	}
	m.reloadMedicines()
	m.reloadReminders()
	m.notify(fmt.Sprintf("Deleted %s.", name))
}

func (m *Model) saveAnswer() {
	if err := m.deps.Answers.SetDraft(m.ctx, m.editingIndex, m.answerForm.Answer, m.answerForm.Summary); err != nil {
		m.fail("Answer not saved", err)
		return
	}
	m.reloadAnswers()
	m.notify("Draft saved. Press 's' to sync.")
}

func (m *Model) syncAnswers() {
	res, err := m.deps.Answers.Sync(m.ctx)
	if err != nil {
		m.fail("Sync failed", err)
		return
	}
	m.reloadAnswers()
	if len(res.Changed) == 0 {
		m.notify("Answers are up to date.")
		return
	}
	m.notify(fmt.Sprintf("Synced %d changed answer(s).", len(res.Changed)))
}
