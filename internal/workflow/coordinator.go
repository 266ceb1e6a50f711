package workflow

import (
	"context"
	"errors"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/policy"
)

var ErrNotPermitted = errors.New("not permitted")
var ErrNoPendingTransition = errors.New("no pending status transition")

// API is the full REST surface the task detail screen depends on.
// *api.Client satisfies it.
type API interface {
	GetTask(ctx context.Context, taskID string) (*model.Task, error)
	SubmitAPI
	AlertAPI
}

// Coordinator composes the access policy, transition controller, submission
// pipeline and alert reconciler around one fetched task: the screen-level
// contract of the task detail view.
//
// It is not safe for concurrent use. The UI event loop owns it; async
// callers split work into the *Args snapshot methods (safe to call from a
// command goroutine via the pipeline) and Apply* methods (called back on the
// loop).
type Coordinator struct {
	api  API
	user model.User

	task        model.Task
	caps        policy.Set
	transitions *TransitionController
	alerts      *AlertReconciler
	pipeline    *Pipeline

	draftComment string
	// statusErr holds the UpdateStatus error after a partial success, until
	// the transition is retried, cancelled or committed.
	statusErr error
}

// New builds the per-view state around an already-fetched task.
func New(api API, user model.User, t model.Task) *Coordinator {
	return &Coordinator{
		api:         api,
		user:        user,
		task:        t,
		caps:        policy.Capabilities(user.Role, t, user.ID),
		transitions: NewTransitionController(t.Status),
		alerts:      NewAlertReconciler(api, t.ID, t.Alert()),
		pipeline:    NewPipeline(api),
	}
}

// Open fetches the task and initializes the per-view state from it.
func Open(ctx context.Context, api API, user model.User, taskID string) (*Coordinator, error) {
	t, err := api.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return New(api, user, *t), nil
}

func (c *Coordinator) Task() model.Task              { return c.task }
func (c *Coordinator) User() model.User              { return c.user }
func (c *Coordinator) Capabilities() policy.Set      { return c.caps }
func (c *Coordinator) Alerts() *AlertReconciler      { return c.alerts }
func (c *Coordinator) Pipeline() *Pipeline           { return c.pipeline }
func (c *Coordinator) DraftComment() string          { return c.draftComment }
func (c *Coordinator) SetDraftComment(text string)   { c.draftComment = text }
func (c *Coordinator) DisplayedStatus() model.Status { return c.transitions.Displayed() }

func (c *Coordinator) Pending() (PendingTransition, bool) { return c.transitions.Pending() }

// ShowsStatusControl reports whether the view renders the interactive status
// control; otherwise a read-only badge is shown. Terminal statuses already
// gate non-admins inside the capability computation.
func (c *Coordinator) ShowsStatusControl() bool { return c.caps.CanChangeStatus }

// CommentRequired reports whether a comment is mandatory before the staged
// transition may be committed.
func (c *Coordinator) CommentRequired() bool {
	_, ok := c.transitions.Pending()
	return ok
}

// StatusErr returns the UpdateStatus failure behind a sticky partial-success
// banner, or nil.
func (c *Coordinator) StatusErr() error { return c.statusErr }

// Comments returns the task's comments newest-first for display.
func (c *Coordinator) Comments() []model.Comment { return c.task.CommentsNewestFirst() }

// RequestStatus stages next as the tentative status.
func (c *Coordinator) RequestStatus(next model.Status) error {
	if !c.caps.CanChangeStatus {
		return ErrNotPermitted
	}
	c.transitions.RequestChange(next)
	if _, ok := c.transitions.Pending(); !ok {
		c.statusErr = nil
	}
	return nil
}

// CancelPending abandons the staged transition; status display reverts and
// nothing is sent to the server.
func (c *Coordinator) CancelPending() {
	c.transitions.CancelPending()
	c.statusErr = nil
}

// CommitArgs validates and snapshots the inputs for one pipeline submission.
// The pending transition's From is stamped with the status of record at this
// moment, not whatever it was when the user opened the status picker.
func (c *Coordinator) CommitArgs() (taskID, text string, pending *PendingTransition, err error) {
	if p, ok := c.transitions.Pending(); ok {
		p.From = c.transitions.Current()
		pending = &p
	}
	return c.task.ID, c.draftComment, pending, nil
}

// RetryStatusArgs snapshots the status-only retry after a partial success.
func (c *Coordinator) RetryStatusArgs() (taskID string, pending PendingTransition, err error) {
	p, ok := c.transitions.Pending()
	if !ok {
		return "", PendingTransition{}, ErrNoPendingTransition
	}
	p.From = c.transitions.Current()
	return c.task.ID, p, nil
}

// ApplyOutcome folds a pipeline outcome back into the view state and reports
// whether the caller should refetch the task.
//
//   - Full success: the draft comment is cleared and the status of record
//     moves; refetch.
//   - Partial success: the comment is durably recorded, so the draft is
//     cleared too, but the transition stays staged for a status-only retry;
//     refetch (the comment is already on the server).
//   - Failure: nothing persisted; the draft and any staged transition are
//     preserved so the user can retry; no refetch.
func (c *Coordinator) ApplyOutcome(out Outcome) (refetch bool) {
	switch out.Kind {
	case OutcomeFullSuccess:
		c.draftComment = ""
		c.statusErr = nil
		if out.NewStatus != "" {
			c.transitions.ConfirmCommitted(out.NewStatus)
		}
		return true
	case OutcomePartialSuccess:
		if out.Comment != nil {
			c.draftComment = ""
		}
		c.statusErr = out.StatusErr
		return out.Comment != nil
	default:
		return false
	}
}

// ApplyTask replaces the cached task from a refetch: capabilities are
// recomputed, the status of record catches up, and the alert baseline is
// refreshed without clobbering an unsaved alert edit.
func (c *Coordinator) ApplyTask(t model.Task) {
	c.task = t
	c.caps = policy.Capabilities(c.user.Role, t, c.user.ID)
	c.transitions.SetCurrent(t.Status)
	c.alerts.Refresh(t.Alert())
}

// Reload refetches the task, the durable source of truth, instead of
// hand-merging server deltas into local state.
func (c *Coordinator) Reload(ctx context.Context) error {
	t, err := c.api.GetTask(ctx, c.task.ID)
	if err != nil {
		return err
	}
	c.ApplyTask(*t)
	return nil
}

// SubmitComment runs the whole commit synchronously: validate, submit,
// apply, refetch. The scriptable CLI path; the TUI splits the same steps
// across its event loop.
func (c *Coordinator) SubmitComment(ctx context.Context) Outcome {
	taskID, text, pending, _ := c.CommitArgs()
	out := c.pipeline.Submit(ctx, taskID, text, pending)
	if c.ApplyOutcome(out) {
		// Best effort: the writes already landed; a failed refetch only
		// leaves the view stale.
		_ = c.Reload(ctx)
	}
	return out
}

// RetryStatus re-attempts only the status update of a partially failed
// commit. The recorded audit comment is never resubmitted.
func (c *Coordinator) RetryStatus(ctx context.Context) Outcome {
	taskID, pending, err := c.RetryStatusArgs()
	if err != nil {
		return Outcome{Kind: OutcomeFailure, Err: err}
	}
	out := c.pipeline.RetryStatus(ctx, taskID, pending)
	if c.ApplyOutcome(out) {
		_ = c.Reload(ctx)
	}
	return out
}

// SaveAlert commits a dirty alert draft and refetches on an actual write.
func (c *Coordinator) SaveAlert(ctx context.Context) (*model.Task, error) {
	t, err := c.alerts.Commit(ctx)
	if err != nil {
		return nil, err
	}
	if t != nil {
		_ = c.Reload(ctx)
	}
	return t, nil
}

// Close discards all transient view state without issuing network calls.
// An in-flight request is allowed to complete; its result is simply not
// applied anywhere.
func (c *Coordinator) Close() {
	c.draftComment = ""
	c.statusErr = nil
	c.transitions.CancelPending()
	c.alerts.Rebase(c.task.Alert())
}
