package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

// fakeAPI implements the workflow API surface and counts calls so tests can
// assert on the exact network behavior of the pipeline.
type fakeAPI struct {
	task model.Task

	getCalls     int
	createCalls  int
	statusCalls  int
	alertCalls   int
	createErr    error
	statusErr    error
	alertErr     error
	lastComment  string
	lastStatus   model.Status
	nextComments int
}

func (f *fakeAPI) GetTask(ctx context.Context, taskID string) (*model.Task, error) {
	f.getCalls++
	t := f.task
	return &t, nil
}

func (f *fakeAPI) CreateComment(ctx context.Context, taskID, text string) (*model.Comment, error) {
	f.createCalls++
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.lastComment = text
	f.nextComments++
	cm := model.Comment{
		ID:        fmt.Sprintf("cmt-%d", f.nextComments),
		AuthorID:  "usr-1",
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	f.task.Comments = append(f.task.Comments, cm)
	f.task.UpdatedAt = cm.CreatedAt
	return &cm, nil
}

func (f *fakeAPI) UpdateStatus(ctx context.Context, taskID string, status model.Status) (*model.Task, error) {
	f.statusCalls++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	f.lastStatus = status
	f.task.Status = status
	f.task.UpdatedAt = time.Now().UTC()
	t := f.task
	return &t, nil
}

func (f *fakeAPI) UpdateAlert(ctx context.Context, taskID string, alert model.AlertSetting) (*model.Task, error) {
	f.alertCalls++
	if f.alertErr != nil {
		return nil, f.alertErr
	}
	f.task.AlertEnabled = alert.Enabled
	f.task.AlertDate = alert.Date
	t := f.task
	return &t, nil
}

func seedTask() model.Task {
	return model.Task{
		ID:         "task-1",
		Code:       "OPS-104",
		Name:       "Prep isolation room",
		Status:     model.StatusPending,
		AssigneeID: "usr-1",
		CreatorID:  "usr-9",
		CreatedAt:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestSubmit_EmptyCommentIsRejectedBeforeAnyCall(t *testing.T) {
	f := &fakeAPI{task: seedTask()}
	p := NewPipeline(f)

	out := p.Submit(context.Background(), "task-1", "   \n\t", &PendingTransition{From: model.StatusPending, To: model.StatusInProgress})
	if out.Kind != OutcomeFailure {
		t.Fatalf("expected failure outcome; got %v", out.Kind)
	}
	if !errors.Is(out.Err, ErrEmptyComment) {
		t.Fatalf("expected ErrEmptyComment; got %v", out.Err)
	}
	if f.createCalls != 0 || f.statusCalls != 0 {
		t.Fatalf("expected zero network calls; got create=%d status=%d", f.createCalls, f.statusCalls)
	}
}

func TestSubmit_CommentAndStatusBothSucceed(t *testing.T) {
	// Scenario A: Pending -> InProgress with comment "Starting work".
	f := &fakeAPI{task: seedTask()}
	p := NewPipeline(f)

	out := p.Submit(context.Background(), "task-1", "Starting work", &PendingTransition{From: model.StatusPending, To: model.StatusInProgress})
	if out.Kind != OutcomeFullSuccess {
		t.Fatalf("expected full success; got kind=%v err=%v statusErr=%v", out.Kind, out.Err, out.StatusErr)
	}
	if out.NewStatus != model.StatusInProgress {
		t.Fatalf("expected new status in_progress; got %q", out.NewStatus)
	}
	if out.Comment == nil || out.Comment.Text != "Starting work" {
		t.Fatalf("expected persisted comment; got %+v", out.Comment)
	}
	if f.createCalls != 1 || f.statusCalls != 1 {
		t.Fatalf("expected exactly one call each; got create=%d status=%d", f.createCalls, f.statusCalls)
	}
}

func TestSubmit_StatusFailureIsPartialNotGenericError(t *testing.T) {
	// Scenario B: the comment lands, UpdateStatus fails with {message:"conflict"}.
	f := &fakeAPI{task: seedTask(), statusErr: errors.New("conflict")}
	p := NewPipeline(f)

	out := p.Submit(context.Background(), "task-1", "Starting work", &PendingTransition{From: model.StatusPending, To: model.StatusInProgress})
	if out.Kind != OutcomePartialSuccess {
		t.Fatalf("expected partial success; got %v", out.Kind)
	}
	if out.Comment == nil {
		t.Fatalf("expected the persisted comment on the outcome")
	}
	if out.StatusErr == nil || out.StatusErr.Error() != "conflict" {
		t.Fatalf("expected status error to surface verbatim; got %v", out.StatusErr)
	}
	if out.NewStatus != model.StatusPending {
		t.Fatalf("status of record must not move on partial success; got %q", out.NewStatus)
	}
	if len(f.task.Comments) != 1 {
		t.Fatalf("expected comment durably recorded; got %d", len(f.task.Comments))
	}
}

func TestSubmit_NoPendingTransitionSkipsStatusCall(t *testing.T) {
	f := &fakeAPI{task: seedTask()}
	p := NewPipeline(f)

	out := p.Submit(context.Background(), "task-1", "For the record", nil)
	if out.Kind != OutcomeFullSuccess {
		t.Fatalf("expected full success; got %v", out.Kind)
	}
	if out.NewStatus != "" {
		t.Fatalf("expected unchanged status marker; got %q", out.NewStatus)
	}
	if f.statusCalls != 0 {
		t.Fatalf("expected no status call; got %d", f.statusCalls)
	}
}

func TestSubmit_SameFromAndToSkipsStatusCall(t *testing.T) {
	// A concurrent refetch may have already moved the status of record to the
	// staged target; the snapshot makes from==to and the pipeline must not
	// issue a redundant write.
	f := &fakeAPI{task: seedTask()}
	p := NewPipeline(f)

	out := p.Submit(context.Background(), "task-1", "already there", &PendingTransition{From: model.StatusInProgress, To: model.StatusInProgress})
	if out.Kind != OutcomeFullSuccess {
		t.Fatalf("expected full success; got %v", out.Kind)
	}
	if f.statusCalls != 0 {
		t.Fatalf("expected no status call; got %d", f.statusCalls)
	}
}

func TestSubmit_CreateCommentFailureStopsPipeline(t *testing.T) {
	f := &fakeAPI{task: seedTask(), createErr: errors.New("task not found")}
	p := NewPipeline(f)

	out := p.Submit(context.Background(), "task-1", "hello", &PendingTransition{From: model.StatusPending, To: model.StatusInProgress})
	if out.Kind != OutcomeFailure {
		t.Fatalf("expected failure; got %v", out.Kind)
	}
	if f.statusCalls != 0 {
		t.Fatalf("no status call may follow a failed comment; got %d", f.statusCalls)
	}
}

func TestRetryStatus_NeverResubmitsComment(t *testing.T) {
	f := &fakeAPI{task: seedTask()}
	p := NewPipeline(f)

	out := p.RetryStatus(context.Background(), "task-1", PendingTransition{From: model.StatusPending, To: model.StatusInProgress})
	if out.Kind != OutcomeFullSuccess {
		t.Fatalf("expected full success; got %v", out.Kind)
	}
	if f.createCalls != 0 {
		t.Fatalf("retry must not create a comment; got %d create calls", f.createCalls)
	}
	if f.statusCalls != 1 {
		t.Fatalf("expected one status call; got %d", f.statusCalls)
	}
}

func TestRetryStatus_FailureStaysPartial(t *testing.T) {
	f := &fakeAPI{task: seedTask(), statusErr: errors.New("conflict")}
	p := NewPipeline(f)

	out := p.RetryStatus(context.Background(), "task-1", PendingTransition{From: model.StatusPending, To: model.StatusInProgress})
	if out.Kind != OutcomePartialSuccess {
		t.Fatalf("expected partial success; got %v", out.Kind)
	}
	if out.StatusErr == nil {
		t.Fatalf("expected status error")
	}
}
