package tui

import (
	"strings"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.modal != modalNone {
		return m.updateModalKey(msg)
	}
	switch m.view {
	case viewDetail:
		return m.updateDetailKey(msg)
	default:
		return m.updateListKey(msg)
	}
}

func (m appModel) updateListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searchInput.SetValue(m.ctrl.Filters().Search)
		m.searchInput.CursorEnd()
		m.searchInput.Focus()
		m.modal = modalSearch
		return m, textinput.Blink
	case "f":
		seq := m.ctrl.SetStatusFilter(nextStatusFilter(m.ctrl.Filters().Status))
		return m, m.fetchTasksCmd(seq)
	case "right", "]":
		if seq, moved := m.ctrl.NextPage(); moved {
			return m, m.fetchTasksCmd(seq)
		}
		return m, nil
	case "left", "[":
		if seq, moved := m.ctrl.PrevPage(); moved {
			return m, m.fetchTasksCmd(seq)
		}
		return m, nil
	case "r":
		// Same filter state, fresh fetch.
		return m, m.fetchTasksCmd(m.ctrl.Seq())
	case "enter":
		if it, ok := m.tasks.SelectedItem().(taskItem); ok && !m.inFlight {
			m.inFlight = true
			return m, m.openTaskCmd(it.task.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.tasks, cmd = m.tasks.Update(msg)
	return m, cmd
}

// nextStatusFilter cycles any -> pending -> in_progress -> completed ->
// cancelled -> any.
func nextStatusFilter(cur *model.Status) *model.Status {
	all := model.AllStatuses()
	if cur == nil {
		return &all[0]
	}
	for i, s := range all {
		if s == *cur {
			if i == len(all)-1 {
				return nil
			}
			return &all[i+1]
		}
	}
	return nil
}

func (m appModel) updateDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc", "backspace":
		// Leaving the view discards all transient state; nothing is sent.
		// An in-flight request may still complete, but its result arrives
		// tagged with the old generation (or finds no coordinator) and is
		// dropped.
		m.co.Close()
		m.co = nil
		m.detailSeq++
		m.inFlight = false
		m.view = viewList
		m.notice = ""
		m.errMsg = ""
		return m, m.fetchTasksCmd(m.ctrl.Seq())
	case "r":
		if !m.inFlight {
			m.inFlight = true
			return m, m.openTaskCmd(m.co.Task().ID)
		}
		return m, nil
	case "s":
		if m.inFlight {
			return m, nil
		}
		if !m.co.ShowsStatusControl() {
			m.errMsg = "you do not have permission to change this task's status"
			return m, nil
		}
		m.statusCursor = statusIndex(m.co.DisplayedStatus())
		m.modal = modalStatusPicker
		return m, nil
	case "x":
		if m.inFlight {
			return m, nil
		}
		if _, ok := m.co.Pending(); !ok {
			return m, nil
		}
		m.co.CancelPending()
		m.notice = "status change cancelled"
		return m, nil
	case "c":
		if m.inFlight {
			return m, nil
		}
		return m.openCommentModal()
	case "t":
		if m.co.StatusErr() != nil && !m.inFlight {
			m.inFlight = true
			return m, m.retryStatusCmd()
		}
		return m, nil
	case "a":
		m.co.Alerts().SetEnabled(!m.co.Alerts().Draft().Enabled)
		return m, nil
	case "d":
		m.alertInput.SetValue(alertDateValue(m.co.Alerts().Draft().Date))
		m.alertInput.CursorEnd()
		m.alertInput.Focus()
		m.modal = modalAlertDate
		return m, textinput.Blink
	case "w":
		if m.inFlight || !m.co.Alerts().HasChanged() {
			return m, nil
		}
		m.inFlight = true
		return m, m.saveAlertCmd()
	}
	return m, nil
}

func (m appModel) openCommentModal() (tea.Model, tea.Cmd) {
	m.commentInput.SetValue(m.co.DraftComment())
	m.commentInput.Focus()
	m.modal = modalComment
	return m, textinput.Blink
}

func statusIndex(s model.Status) int {
	for i, st := range model.AllStatuses() {
		if st == s {
			return i
		}
	}
	return 0
}

func alertDateValue(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.UTC().Format("2006-01-02")
}

func (m appModel) updateModalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalSearch:
		return m.updateSearchModal(msg)
	case modalStatusPicker:
		return m.updateStatusPickerModal(msg)
	case modalComment:
		return m.updateCommentModal(msg)
	case modalAlertDate:
		return m.updateAlertDateModal(msg)
	}
	return m, nil
}

func (m appModel) updateSearchModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		m.searchInput.Blur()
		return m, nil
	case "enter":
		m.modal = modalNone
		m.searchInput.Blur()
		seq := m.ctrl.SetSearch(m.searchInput.Value())
		return m, m.fetchTasksCmd(seq)
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m appModel) updateStatusPickerModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	all := model.AllStatuses()
	switch msg.String() {
	case "esc":
		m.modal = modalNone
		return m, nil
	case "up", "k", "ctrl+p":
		if m.statusCursor > 0 {
			m.statusCursor--
		}
		return m, nil
	case "down", "j", "ctrl+n":
		if m.statusCursor < len(all)-1 {
			m.statusCursor++
		}
		return m, nil
	case "enter":
		m.modal = modalNone
		if err := m.co.RequestStatus(all[m.statusCursor]); err != nil {
			m.errMsg = err.Error()
			return m, nil
		}
		if _, ok := m.co.Pending(); !ok {
			// Reselecting the current status clears the staged change.
			return m, nil
		}
		// A staged transition cannot be committed without its audit comment.
		return m.openCommentModal()
	}
	return m, nil
}

func (m appModel) updateCommentModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		// Keep the draft (and any staged transition) for later.
		m.co.SetDraftComment(m.commentInput.Value())
		m.commentInput.Blur()
		m.modal = modalNone
		return m, nil
	case "ctrl+s", "ctrl+d":
		m.co.SetDraftComment(m.commentInput.Value())
		if strings.TrimSpace(m.co.DraftComment()) == "" {
			m.errMsg = "a comment is required"
			return m, nil
		}
		m.commentInput.Blur()
		m.modal = modalNone
		m.inFlight = true
		m.errMsg = ""
		return m, m.submitCmd()
	}
	var cmd tea.Cmd
	m.commentInput, cmd = m.commentInput.Update(msg)
	return m, cmd
}

func (m appModel) updateAlertDateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.alertInput.Blur()
		m.modal = modalNone
		return m, nil
	case "enter":
		v := strings.TrimSpace(m.alertInput.Value())
		if v == "" {
			m.co.Alerts().SetDate(nil)
		} else {
			d, err := time.ParseInLocation("2006-01-02", v, time.UTC)
			if err != nil {
				m.errMsg = "invalid date, use YYYY-MM-DD"
				return m, nil
			}
			m.co.Alerts().SetDate(&d)
		}
		m.errMsg = ""
		m.alertInput.Blur()
		m.modal = modalNone
		return m, nil
	}
	var cmd tea.Cmd
	m.alertInput, cmd = m.alertInput.Update(msg)
	return m, cmd
}

func (m appModel) updateActiveWidget(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view == viewList && m.modal == modalNone {
		var cmd tea.Cmd
		m.tasks, cmd = m.tasks.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) resize() {
	h := m.height - 6
	if h < 8 {
		h = 8
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	m.tasks.SetSize(w, h)
}
