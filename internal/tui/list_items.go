package tui

import (
	"strings"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"

	"github.com/charmbracelet/bubbles/list"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string {
	return strings.TrimSpace(i.task.Code + " " + i.task.Name)
}

func (i taskItem) Title() string {
	title := i.task.Code + "  " + i.task.Name
	if i.task.AlertEnabled {
		title += "  !"
	}
	return title
}

func (i taskItem) Description() string {
	desc := i.task.Status.Label()
	if i.task.AssigneeDetails != nil && i.task.AssigneeDetails.Name != "" {
		desc += "  " + i.task.AssigneeDetails.Name
	}
	return desc
}

func newTaskList(items []list.Item) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	// The app renders its own header and footer, so keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	// Server-side search replaces the bubble list's local filtering.
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	// Bubble list defaults to quitting on ESC; here ESC is "back/cancel".
	l.KeyMap.Quit.SetKeys("q")
	// Emacs-style navigation aliases.
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}

func taskListItems(tasks []model.Task) []list.Item {
	items := make([]list.Item, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, taskItem{task: t})
	}
	return items
}
