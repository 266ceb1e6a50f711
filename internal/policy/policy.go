package policy

import (
	"strings"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

// Set is the closed capability set the task detail screen renders from.
// It is computed once per (task, user) pair and passed down; call sites never
// re-derive capabilities from role strings.
type Set struct {
	CanComment      bool
	CanChangeStatus bool
}

// Capabilities maps (role, task, user) to the capability set.
//
// Rules:
//   - Admins, global admins and managers may always comment; so may the
//     task's assignee and its creator.
//   - A commenter may change status while the task is not terminal.
//   - Only an admin may force a status change on a Completed/Cancelled task.
//
// Pure and total; must be re-evaluated whenever the task or user changes.
func Capabilities(role model.Role, task model.Task, userID string) Set {
	userID = strings.TrimSpace(userID)

	canComment := role == model.RoleAdmin || role == model.RoleGlobalAdmin || role == model.RoleManager
	if !canComment && userID != "" {
		canComment = userID == strings.TrimSpace(task.AssigneeID) || userID == strings.TrimSpace(task.CreatorID)
	}

	canChange := role == model.RoleAdmin
	if !canChange {
		canChange = canComment && !task.Status.IsTerminal()
	}

	return Set{CanComment: canComment, CanChangeStatus: canChange}
}
