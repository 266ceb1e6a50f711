package model

import (
	"fmt"
	"strings"
)

// Status is the closed task-status enumeration used by the lifecycle
// workflow. Completed and Cancelled are terminal: they close the task to
// further non-privileged status changes.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func AllStatuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	case StatusCancelled:
		return "Cancelled"
	default:
		return string(s)
	}
}

func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "pending":
		return StatusPending, nil
	case "in_progress", "inprogress", "in progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	case "cancelled", "canceled":
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("invalid status: %q", s)
	}
}

// Role is the closed role enumeration consumed by the access policy.
// Roles come from the session and are treated as opaque capability input,
// not re-derived ad hoc from strings at call sites.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleGlobalAdmin Role = "global_admin"
	RoleManager     Role = "manager"
	RoleStaff       Role = "staff"
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(strings.ReplaceAll(s, "-", "_"))) {
	case "admin":
		return RoleAdmin, nil
	case "global_admin", "globaladmin":
		return RoleGlobalAdmin, nil
	case "manager":
		return RoleManager, nil
	case "staff", "":
		return RoleStaff, nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}
