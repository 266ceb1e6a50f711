package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/api"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/cache"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/tasklist"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/workflow"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const requestTimeout = 30 * time.Second

type appModel struct {
	client workflow.API
	lister tasklist.Lister
	user   model.User
	store  *cache.Cache

	width  int
	height int

	view  view
	modal modal

	ctrl     *tasklist.Controller
	tasks    list.Model
	co       *workflow.Coordinator
	inFlight bool
	// detailSeq is the detail-view generation. Closing the view bumps it, so
	// a task fetch that was in flight for the closed view is recognized as
	// stale and discarded instead of reopening the view.
	detailSeq int
	// fromCache marks the list as the offline copy until a live page lands.
	fromCache bool
	cachedAt  time.Time

	searchInput  textinput.Model
	commentInput textarea.Model
	alertInput   textinput.Model
	statusCursor int

	errMsg string
	notice string
}

func newAppModel(client *api.Client, user model.User, store *cache.Cache) appModel {
	si := textinput.New()
	si.Placeholder = "search tasks"
	si.CharLimit = 120

	ci := textarea.New()
	ci.Placeholder = "Comment"
	ci.CharLimit = 4000
	ci.SetHeight(5)

	ai := textinput.New()
	ai.Placeholder = "YYYY-MM-DD (empty clears)"
	ai.CharLimit = 10

	m := appModel{
		client:       client,
		lister:       client,
		user:         user,
		store:        store,
		view:         viewList,
		ctrl:         tasklist.NewController(),
		searchInput:  si,
		commentInput: ci,
		alertInput:   ai,
	}
	m.tasks = newTaskList(nil)
	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchTasksCmd(m.ctrl.Seq())}
	if m.store != nil {
		cmds = append(cmds, m.loadCachedCmd())
	}
	return tea.Batch(cmds...)
}

// --- commands (run off the event loop) ---

func (m appModel) fetchTasksCmd(seq int) tea.Cmd {
	lister := m.lister
	filters := m.ctrl.Filters()
	page, limit := m.ctrl.Page(), m.ctrl.Limit()
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, meta, err := lister.ListTasks(ctx, filters, page, limit)
		if err == nil && store != nil {
			_ = store.PutTasks(ctx, tasks)
		}
		return tasksLoadedMsg{seq: seq, tasks: tasks, meta: meta, err: err}
	}
}

func (m appModel) loadCachedCmd() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		tasks, fetchedAt, err := store.Tasks(ctx)
		if err != nil || len(tasks) == 0 {
			return nil
		}
		return cachedTasksMsg{tasks: tasks, fetchedAt: fetchedAt}
	}
}

func (m appModel) openTaskCmd(taskID string) tea.Cmd {
	client := m.client
	seq := m.detailSeq
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := client.GetTask(ctx, taskID)
		return taskLoadedMsg{seq: seq, task: t, err: err}
	}
}

func (m appModel) submitCmd() tea.Cmd {
	taskID, text, pending, _ := m.co.CommitArgs()
	pipeline := m.co.Pipeline()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return submitDoneMsg{out: pipeline.Submit(ctx, taskID, text, pending)}
	}
}

func (m appModel) retryStatusCmd() tea.Cmd {
	taskID, pending, err := m.co.RetryStatusArgs()
	if err != nil {
		return func() tea.Msg {
			return retryDoneMsg{out: workflow.Outcome{Kind: workflow.OutcomeFailure, Err: err}}
		}
	}
	pipeline := m.co.Pipeline()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return retryDoneMsg{out: pipeline.RetryStatus(ctx, taskID, pending)}
	}
}

func (m appModel) saveAlertCmd() tea.Cmd {
	alerts := m.co.Alerts()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := alerts.Commit(ctx)
		return alertSavedMsg{task: t, err: err}
	}
}

// --- update ---

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tasksLoadedMsg:
		return m.updateTasksLoaded(msg)

	case cachedTasksMsg:
		// The first live page wins over the offline copy.
		if len(m.tasks.Items()) > 0 && !m.fromCache {
			return m, nil
		}
		m.fromCache = true
		m.cachedAt = msg.fetchedAt
		m.tasks.SetItems(taskListItems(msg.tasks))
		return m, nil

	case taskLoadedMsg:
		return m.updateTaskLoaded(msg)

	case submitDoneMsg:
		return m.updateSubmitDone(msg.out, false)

	case retryDoneMsg:
		return m.updateSubmitDone(msg.out, true)

	case alertSavedMsg:
		if m.co == nil {
			// The view closed while the save was in flight; the write (if
			// any) landed server-side and the result is simply dropped.
			return m, nil
		}
		m.inFlight = false
		if msg.err != nil {
			m.errMsg = "alert save failed: " + msg.err.Error()
			return m, nil
		}
		if msg.task == nil {
			m.notice = "alert unchanged"
			return m, nil
		}
		m.notice = "alert saved"
		return m, m.openTaskCmd(m.co.Task().ID)

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	return m.updateActiveWidget(msg)
}

func (m appModel) updateTasksLoaded(msg tasksLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if m.fromCache {
			m.errMsg = fmt.Sprintf("offline: %v (showing copy from %s)", msg.err, relativeAge(m.cachedAt))
		} else {
			m.errMsg = msg.err.Error()
		}
		return m, nil
	}
	if !m.ctrl.Apply(msg.seq, msg.tasks, msg.meta) {
		// Superseded by a newer filter/page change.
		return m, nil
	}
	m.fromCache = false
	m.errMsg = ""
	m.tasks.SetItems(taskListItems(msg.tasks))
	return m, nil
}

func (m appModel) updateTaskLoaded(msg taskLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.detailSeq {
		// Fetched for a detail view that has since been closed.
		return m, nil
	}
	m.inFlight = false
	if msg.err != nil {
		m.errMsg = msg.err.Error()
		return m, nil
	}
	if m.co != nil && m.view == viewDetail && m.co.Task().ID == msg.task.ID {
		// Refetch of the open task.
		m.co.ApplyTask(*msg.task)
		return m, nil
	}
	m.co = workflow.New(m.client, m.user, *msg.task)
	m.view = viewDetail
	m.modal = modalNone
	m.notice = ""
	m.errMsg = ""
	return m, nil
}

func (m appModel) updateSubmitDone(out workflow.Outcome, retry bool) (tea.Model, tea.Cmd) {
	if m.co == nil {
		// The view closed mid-submission. The writes are already durable
		// server-side; the closed view just never shows the outcome.
		return m, nil
	}
	m.inFlight = false
	refetch := m.co.ApplyOutcome(out)
	switch out.Kind {
	case workflow.OutcomeFullSuccess:
		if retry {
			m.notice = "status updated"
		} else {
			m.notice = "saved"
		}
		m.errMsg = ""
	case workflow.OutcomePartialSuccess:
		m.notice = ""
		m.errMsg = ""
	default:
		m.errMsg = out.Err.Error()
	}
	if refetch {
		return m, m.openTaskCmd(m.co.Task().ID)
	}
	return m, nil
}

// --- view ---

func (m appModel) View() string {
	header := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("Origins Tasks  User=%s  Role=%s", emptyAsDash(m.user.DisplayName), m.user.Role))

	var body string
	switch {
	case m.modal == modalSearch:
		body = m.tasks.View() + "\n\n" + "Search: " + m.searchInput.View() +
			"\n" + styleMuted().Render("enter: apply  esc: cancel")
	case m.modal == modalStatusPicker:
		body = m.viewStatusPicker()
	case m.modal == modalComment:
		body = m.viewCommentModal()
	case m.modal == modalAlertDate:
		body = "Alert date: " + m.alertInput.View() +
			"\n" + styleMuted().Render("enter: set  esc: cancel  (empty clears the date)")
	case m.view == viewDetail && m.co != nil:
		body = renderTaskDetail(m.co, max(m.width, 40), max(m.height-6, 8))
	default:
		body = m.tasks.View()
	}

	return strings.Join([]string{header, body, m.viewFooter()}, "\n\n")
}

func (m appModel) viewStatusPicker() string {
	var b strings.Builder
	b.WriteString("Set status:\n")
	for i, s := range model.AllStatuses() {
		line := "  " + s.Label()
		if i == m.statusCursor {
			line = lipgloss.NewStyle().
				Foreground(colorSelectedFg).
				Background(colorSelectedBg).
				Render("> " + s.Label())
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + styleMuted().Render("enter: select (comment required)  esc: cancel"))
	return b.String()
}

func (m appModel) viewCommentModal() string {
	label := "Add comment"
	if p, ok := m.co.Pending(); ok {
		label = fmt.Sprintf("Comment for %s -> %s (required)", p.From.Label(), p.To.Label())
	}
	return label + "\n" + m.commentInput.View() +
		"\n" + styleMuted().Render("ctrl+s: submit  esc: keep draft and close")
}

func (m appModel) viewFooter() string {
	var parts []string
	if m.errMsg != "" {
		parts = append(parts, styleError().Render(m.errMsg))
	}
	if m.notice != "" {
		parts = append(parts, styleOK().Render(m.notice))
	}
	if m.inFlight {
		parts = append(parts, styleMuted().Render("working…"))
	}

	var help string
	if m.view == viewDetail {
		help = "s: status  c: comment  a/d/w: alert  r: reload  esc: back  q: quit"
	} else {
		f := m.ctrl.Filters()
		status := "any"
		if f.Status != nil {
			status = string(*f.Status)
		}
		pos := fmt.Sprintf("page %d/%d  status:%s", m.ctrl.Page(), max(m.ctrl.Meta().TotalPages, 1), status)
		if f.Search != "" {
			pos += "  search:" + f.Search
		}
		if m.fromCache {
			pos += "  " + styleWarn().Render("offline copy from "+relativeAge(m.cachedAt))
		}
		parts = append(parts, styleMuted().Render(pos))
		help = "enter: open  /: search  f: filter  [/]: page  r: reload  q: quit"
	}
	parts = append(parts, styleMuted().Render(help))
	return strings.Join(parts, "\n")
}

func emptyAsDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
