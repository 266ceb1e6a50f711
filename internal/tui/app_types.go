package tui

import (
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/workflow"
)

type view int

const (
	viewList view = iota
	viewDetail
)

// modal identifies which overlay (if any) owns the keyboard.
type modal int

const (
	modalNone modal = iota
	modalSearch
	modalStatusPicker
	modalComment
	modalAlertDate
)

// tasksLoadedMsg carries one page of the task list. seq ties the response to
// the filter/page state that requested it; stale responses are dropped by the
// list controller.
type tasksLoadedMsg struct {
	seq   int
	tasks []model.Task
	meta  model.Page
	err   error
}

// cachedTasksMsg is the offline copy shown while the first live fetch is in
// flight (or when the API is unreachable).
type cachedTasksMsg struct {
	tasks     []model.Task
	fetchedAt time.Time
}

// taskLoadedMsg carries a task detail fetch or refetch. seq is the detail
// view generation that requested it; a response from a closed view is stale.
type taskLoadedMsg struct {
	seq  int
	task *model.Task
	err  error
}

// submitDoneMsg carries the outcome of a comment/status submission.
type submitDoneMsg struct {
	out workflow.Outcome
}

// retryDoneMsg carries the outcome of a status-only retry.
type retryDoneMsg struct {
	out workflow.Outcome
}

// alertSavedMsg carries the result of an alert save. task is nil when the
// draft was clean and nothing was written.
type alertSavedMsg struct {
	task *model.Task
	err  error
}
