package workflow

import (
	"context"
	"errors"
	"strings"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

var ErrEmptyComment = errors.New("comment text required")

// SubmitAPI is the slice of the REST client the submission pipeline needs.
type SubmitAPI interface {
	CreateComment(ctx context.Context, taskID, text string) (*model.Comment, error)
	UpdateStatus(ctx context.Context, taskID string, status model.Status) (*model.Task, error)
}

type OutcomeKind int

const (
	// OutcomeFullSuccess: the comment persisted and, if a transition was
	// staged, the status update landed too.
	OutcomeFullSuccess OutcomeKind = iota
	// OutcomePartialSuccess: the comment persisted but the status update
	// failed. The comment is durably recorded; a retry must not resubmit it.
	OutcomePartialSuccess
	// OutcomeFailure: nothing persisted (client-side validation or a failed
	// CreateComment call). Draft state is preserved for a manual retry.
	OutcomeFailure
)

// Outcome is the tagged result of one pipeline invocation. Callers must
// switch on Kind; the partial case is deliberately not collapsed into the
// generic error path.
type Outcome struct {
	Kind OutcomeKind

	// Comment is the persisted comment (full and partial success).
	Comment *model.Comment
	// Task is the server's task after a successful status update, when a
	// transition was committed.
	Task *model.Task
	// NewStatus is the status of record after the invocation; empty when the
	// invocation carried no staged transition (status unchanged).
	NewStatus model.Status

	// StatusErr explains a partial success (UpdateStatus failed).
	StatusErr error
	// Err explains a failure (validation or CreateComment).
	Err error
}

// Pipeline sequences the two non-atomic writes behind an audit-gated status
// change: first the comment, then the status. It performs no retries and
// issues exactly one CreateComment call and at most one UpdateStatus call
// per invocation.
type Pipeline struct {
	api SubmitAPI
}

func NewPipeline(api SubmitAPI) *Pipeline {
	return &Pipeline{api: api}
}

// Submit posts commentText to taskID and, when a transition is staged,
// follows up with the status update.
//
// pending.From must be snapshotted by the caller at commit time so that a
// concurrent refetch between staging and committing cannot make the pipeline
// compare against a stale status.
func (p *Pipeline) Submit(ctx context.Context, taskID, commentText string, pending *PendingTransition) Outcome {
	text := strings.TrimSpace(commentText)
	if text == "" {
		// Client-side gate: rejected before any network call.
		return Outcome{Kind: OutcomeFailure, Err: ErrEmptyComment}
	}

	cm, err := p.api.CreateComment(ctx, taskID, text)
	if err != nil {
		return Outcome{Kind: OutcomeFailure, Err: err}
	}

	if pending == nil || pending.To == pending.From {
		return Outcome{Kind: OutcomeFullSuccess, Comment: cm, NewStatus: pendingFrom(pending)}
	}

	t, err := p.api.UpdateStatus(ctx, taskID, pending.To)
	if err != nil {
		return Outcome{
			Kind:      OutcomePartialSuccess,
			Comment:   cm,
			NewStatus: pending.From,
			StatusErr: err,
		}
	}
	return Outcome{Kind: OutcomeFullSuccess, Comment: cm, Task: t, NewStatus: pending.To}
}

// RetryStatus re-attempts only the status half of a partially failed commit.
// The audit comment from the earlier invocation is already recorded and is
// never resubmitted.
func (p *Pipeline) RetryStatus(ctx context.Context, taskID string, pending PendingTransition) Outcome {
	t, err := p.api.UpdateStatus(ctx, taskID, pending.To)
	if err != nil {
		return Outcome{
			Kind:      OutcomePartialSuccess,
			NewStatus: pending.From,
			StatusErr: err,
		}
	}
	return Outcome{Kind: OutcomeFullSuccess, Task: t, NewStatus: pending.To}
}

func pendingFrom(p *PendingTransition) model.Status {
	if p == nil {
		return ""
	}
	return p.From
}
