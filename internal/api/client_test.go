package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

func TestGetTask_RequestShapeAndDecoding(t *testing.T) {
	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/tasks/task-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("missing bearer token; got %q", got)
		}
		_ = json.NewEncoder(w).Encode(model.Task{
			ID:        "task-1",
			Code:      "OPS-104",
			Name:      "Prep isolation room",
			Status:    model.StatusPending,
			CreatorID: "usr-9",
			CreatedAt: created,
			UpdatedAt: created,
			Comments:  []model.Comment{{ID: "cmt-1", Text: "noted", CreatedAt: created}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	task, err := c.GetTask(context.Background(), "task-1")
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if task.Code != "OPS-104" || len(task.Comments) != 1 {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestListTasks_QueryParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("status") != "pending" || q.Get("search") != "isolation" {
			t.Errorf("unexpected filters: %v", q)
		}
		if q.Get("page") != "2" || q.Get("limit") != "25" {
			t.Errorf("unexpected paging: %v", q)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"tasks":      []model.Task{{ID: "task-1"}, {ID: "task-2"}},
			"pagination": model.Page{Total: 51, TotalPages: 3},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	st := model.StatusPending
	tasks, page, err := c.ListTasks(context.Background(), ListFilters{Status: &st, Search: "isolation"}, 2, 25)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 2 || page.TotalPages != 3 {
		t.Fatalf("unexpected result: %d tasks, page %+v", len(tasks), page)
	}
}

func TestCreateComment_PostsText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tasks/task-1/comments" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["text"] != "Starting work" {
			t.Errorf("unexpected body: %v", body)
		}
		_ = json.NewEncoder(w).Encode(model.Comment{ID: "cmt-1", Text: body["text"]})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	cm, err := c.CreateComment(context.Background(), "task-1", "Starting work")
	if err != nil {
		t.Fatalf("CreateComment: %v", err)
	}
	if cm.ID != "cmt-1" {
		t.Fatalf("unexpected comment: %+v", cm)
	}
}

func TestUpdateStatus_PatchesStatusEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/tasks/task-1/status" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["status"] != "in_progress" {
			t.Errorf("unexpected body: %v", body)
		}
		_ = json.NewEncoder(w).Encode(model.Task{ID: "task-1", Status: model.StatusInProgress})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	task, err := c.UpdateStatus(context.Background(), "task-1", model.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if task.Status != model.StatusInProgress {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestUpdateAlert_SendsPartialFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/tasks/task-1" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["alertEnabled"] != true {
			t.Errorf("expected alertEnabled=true; got %v", body)
		}
		if _, ok := body["alertDate"]; !ok {
			t.Errorf("expected alertDate present; got %v", body)
		}
		if _, ok := body["name"]; ok {
			t.Errorf("alert update must not patch unrelated fields")
		}
		_ = json.NewEncoder(w).Encode(model.Task{ID: "task-1", AlertEnabled: true})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	d := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	task, err := c.UpdateAlert(context.Background(), "task-1", model.AlertSetting{Enabled: true, Date: &d})
	if err != nil {
		t.Fatalf("UpdateAlert: %v", err)
	}
	if !task.AlertEnabled {
		t.Fatalf("unexpected task: %+v", task)
	}
}

func TestErrorShape_MessageSurfacedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"conflict"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.UpdateStatus(context.Background(), "task-1", model.StatusCompleted)
	if err == nil {
		t.Fatalf("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error; got %T", err)
	}
	if apiErr.StatusCode != http.StatusConflict || apiErr.Error() != "conflict" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestError_NonJSONBodyFallsBackToRawText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.GetTask(context.Background(), "task-1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error; got %v", err)
	}
	if apiErr.Message != "upstream down" {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
}
