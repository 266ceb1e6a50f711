package workflow

import (
	"context"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

// AlertAPI is the slice of the REST client the alert reconciler needs.
type AlertAPI interface {
	UpdateAlert(ctx context.Context, taskID string, alert model.AlertSetting) (*model.Task, error)
}

// AlertReconciler tracks the persisted alert configuration (baseline) against
// the user's edit (draft) and only writes when they actually differ. After a
// successful write the draft becomes the new baseline, so an immediate second
// save is a no-op.
type AlertReconciler struct {
	api    AlertAPI
	taskID string

	baseline model.AlertSetting
	draft    model.AlertSetting
}

func NewAlertReconciler(api AlertAPI, taskID string, baseline model.AlertSetting) *AlertReconciler {
	return &AlertReconciler{
		api:      api,
		taskID:   taskID,
		baseline: baseline,
		draft:    baseline,
	}
}

func (r *AlertReconciler) Baseline() model.AlertSetting { return r.baseline }
func (r *AlertReconciler) Draft() model.AlertSetting    { return r.draft }

func (r *AlertReconciler) SetEnabled(enabled bool) { r.draft.Enabled = enabled }

func (r *AlertReconciler) SetDate(date *time.Time) { r.draft.Date = date }

// HasChanged reports whether the draft differs from the baseline (enabled
// flag, date presence, or date at day granularity). The save affordance is
// only enabled while this is true.
func (r *AlertReconciler) HasChanged() bool {
	return !r.draft.Equal(r.baseline)
}

// Rebase resets both baseline and draft from a refetched task, discarding any
// unsaved edit.
func (r *AlertReconciler) Rebase(alert model.AlertSetting) {
	r.baseline = alert
	r.draft = alert
}

// Refresh updates the baseline from a refetched task. A clean draft follows
// the new baseline; a dirty draft is preserved so a background refetch cannot
// silently discard the user's unsaved edit.
func (r *AlertReconciler) Refresh(alert model.AlertSetting) {
	clean := !r.HasChanged()
	r.baseline = alert
	if clean {
		r.draft = alert
	}
}

// Commit writes the draft when it is dirty. A clean draft performs zero
// network calls and returns (nil, nil). On success the baseline catches up
// with the draft.
func (r *AlertReconciler) Commit(ctx context.Context) (*model.Task, error) {
	if !r.HasChanged() {
		return nil, nil
	}
	t, err := r.api.UpdateAlert(ctx, r.taskID, r.draft)
	if err != nil {
		// Draft is preserved so the user can retry manually.
		return nil, err
	}
	r.baseline = r.draft
	return t, nil
}
