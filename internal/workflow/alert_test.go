package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestAlertCommit_SecondSaveWithoutEditIsANoOp(t *testing.T) {
	// Scenario C: save {enabled:true, date:2024-05-01} over {false, nil},
	// then save again without editing.
	f := &fakeAPI{task: seedTask()}
	r := NewAlertReconciler(f, "task-1", model.AlertSetting{})

	r.SetEnabled(true)
	r.SetDate(datePtr(2024, time.May, 1))
	if !r.HasChanged() {
		t.Fatalf("expected dirty draft")
	}

	if _, err := r.Commit(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if f.alertCalls != 1 {
		t.Fatalf("expected one write; got %d", f.alertCalls)
	}

	task, err := r.Commit(context.Background())
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if task != nil {
		t.Fatalf("clean commit must not return a task")
	}
	if f.alertCalls != 1 {
		t.Fatalf("second save must perform zero network calls; got %d", f.alertCalls)
	}
}

func TestAlertHasChanged_DayGranularity(t *testing.T) {
	f := &fakeAPI{}
	base := model.AlertSetting{Enabled: true, Date: datePtr(2024, time.May, 1)}
	r := NewAlertReconciler(f, "task-1", base)

	// Same calendar day, different wall-clock time: not a change.
	sameDay := time.Date(2024, 5, 1, 17, 45, 0, 0, time.UTC)
	r.SetDate(&sameDay)
	if r.HasChanged() {
		t.Fatalf("same-day edit must not count as a change")
	}

	r.SetDate(datePtr(2024, time.May, 2))
	if !r.HasChanged() {
		t.Fatalf("different day must count as a change")
	}

	r.SetDate(nil)
	if !r.HasChanged() {
		t.Fatalf("clearing the date must count as a change")
	}
}

func TestAlertCommit_FailurePreservesDraft(t *testing.T) {
	f := &fakeAPI{alertErr: errors.New("unavailable")}
	r := NewAlertReconciler(f, "task-1", model.AlertSetting{})

	r.SetEnabled(true)
	if _, err := r.Commit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if !r.HasChanged() {
		t.Fatalf("draft must stay dirty after a failed write")
	}
	if r.Baseline().Enabled {
		t.Fatalf("baseline must not move on failure")
	}
}

func TestAlertRefresh_KeepsDirtyDraft(t *testing.T) {
	f := &fakeAPI{}
	r := NewAlertReconciler(f, "task-1", model.AlertSetting{})
	r.SetEnabled(true)

	// A refetch lands while the user is mid-edit: baseline catches up, the
	// unsaved draft survives.
	r.Refresh(model.AlertSetting{Enabled: false, Date: datePtr(2024, time.June, 3)})
	if !r.Draft().Enabled {
		t.Fatalf("dirty draft must survive a refresh")
	}
	if r.Baseline().Date == nil {
		t.Fatalf("baseline must track the refetched value")
	}
}

func TestAlertRefresh_CleanDraftFollowsBaseline(t *testing.T) {
	f := &fakeAPI{}
	r := NewAlertReconciler(f, "task-1", model.AlertSetting{})

	r.Refresh(model.AlertSetting{Enabled: true})
	if !r.Draft().Enabled {
		t.Fatalf("clean draft must follow the refetched value")
	}
	if r.HasChanged() {
		t.Fatalf("refresh of a clean view must not create a phantom edit")
	}
}
