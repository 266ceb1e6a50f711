package cache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "tasks.sqlite"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func cachedTask(id string, updated time.Time) model.Task {
	return model.Task{
		ID:        id,
		Code:      "OPS-" + id,
		Name:      "Task " + id,
		Status:    model.StatusPending,
		CreatorID: "usr-9",
		CreatedAt: updated,
		UpdatedAt: updated,
	}
}

func TestPutTasks_Roundtrip(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := c.PutTasks(ctx, []model.Task{
		cachedTask("1", base),
		cachedTask("2", base.Add(time.Hour)),
	}); err != nil {
		t.Fatalf("put: %v", err)
	}

	tasks, fetchedAt, err := c.Tasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks; got %d", len(tasks))
	}
	if tasks[0].ID != "2" {
		t.Fatalf("expected most recently updated first; got %q", tasks[0].ID)
	}
	if fetchedAt.IsZero() {
		t.Fatalf("expected a fetch timestamp")
	}
}

func TestPutTasks_UpsertsExistingRow(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := c.PutTasks(ctx, []model.Task{cachedTask("1", base)}); err != nil {
		t.Fatalf("put: %v", err)
	}

	updated := cachedTask("1", base.Add(time.Hour))
	updated.Status = model.StatusCompleted
	if err := c.PutTasks(ctx, []model.Task{updated}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, ok, err := c.Task(ctx, "1")
	if err != nil || !ok {
		t.Fatalf("task lookup: ok=%v err=%v", ok, err)
	}
	if got.Status != model.StatusCompleted {
		t.Fatalf("expected upserted status; got %q", got.Status)
	}

	tasks, _, err := c.Tasks(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("upsert must not duplicate rows; got %d", len(tasks))
	}
}

func TestTask_MissingRow(t *testing.T) {
	t.Parallel()
	c := openTestCache(t)

	_, ok, err := c.Task(context.Background(), "nope")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if ok {
		t.Fatalf("expected miss")
	}
}
