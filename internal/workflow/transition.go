package workflow

import "github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"

// PendingTransition is a staged, not-yet-committed status change awaiting its
// mandatory comment. It exists only between the user picking a new status and
// the accompanying comment being committed or discarded.
type PendingTransition struct {
	From model.Status
	To   model.Status
}

// TransitionController holds the status-of-record for an open task view plus
// at most one staged transition. The displayed status is the tentative value
// while a transition is pending; the status of record only moves on a
// confirmed commit.
type TransitionController struct {
	current model.Status
	pending *PendingTransition
}

func NewTransitionController(current model.Status) *TransitionController {
	return &TransitionController{current: current}
}

func (tc *TransitionController) Current() model.Status { return tc.current }

func (tc *TransitionController) Pending() (PendingTransition, bool) {
	if tc.pending == nil {
		return PendingTransition{}, false
	}
	return *tc.pending, true
}

// Displayed returns the status the view should show: the staged target while
// a transition is pending, otherwise the status of record.
func (tc *TransitionController) Displayed() model.Status {
	if tc.pending != nil {
		return tc.pending.To
	}
	return tc.current
}

// RequestChange stages next as the tentative status. Re-selecting the current
// status clears any staged transition instead (the control reverts).
// Staging a new target replaces a previous one; at most one transition is
// pending at a time.
func (tc *TransitionController) RequestChange(next model.Status) {
	if next == tc.current {
		tc.pending = nil
		return
	}
	tc.pending = &PendingTransition{From: tc.current, To: next}
}

// CancelPending drops the staged transition; the displayed status reverts to
// the status of record. A no-op when nothing is staged.
func (tc *TransitionController) CancelPending() {
	tc.pending = nil
}

// ConfirmCommitted moves the status of record after the submission pipeline
// reported full success and clears the staged transition.
func (tc *TransitionController) ConfirmCommitted(newStatus model.Status) {
	tc.current = newStatus
	tc.pending = nil
}

// SetCurrent updates the status of record from a refetched task without
// touching a staged transition (a concurrent refetch must not silently
// abandon the user's staged change).
func (tc *TransitionController) SetCurrent(s model.Status) {
	tc.current = s
	if tc.pending != nil && tc.pending.To == s {
		// The server already holds the staged target (e.g. a status-only
		// retry landed); nothing is pending anymore.
		tc.pending = nil
	}
}
