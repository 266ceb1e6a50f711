package tasklist

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/api"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

const exportPageSize = 200

// Lister is the slice of the REST client the exporter needs.
type Lister interface {
	ListTasks(ctx context.Context, f api.ListFilters, page, limit int) ([]model.Task, model.Page, error)
}

var exportHeader = []string{
	"code", "name", "status", "priority", "assignee", "creator",
	"alertEnabled", "alertDate", "createdAt", "updatedAt",
}

// ExportCSV walks every page of the filtered listing and merges the results
// into one CSV document. A task that slides across a page boundary while the
// walk is in progress (rows shifting under concurrent inserts) is written
// only once. Returns the number of data rows written.
func ExportCSV(ctx context.Context, l Lister, f api.ListFilters, w io.Writer) (int, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return 0, err
	}

	seen := map[string]bool{}
	rows := 0
	page := 1
	for {
		tasks, meta, err := l.ListTasks(ctx, f, page, exportPageSize)
		if err != nil {
			return rows, fmt.Errorf("export page %d: %w", page, err)
		}
		for _, t := range tasks {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			if err := cw.Write(exportRow(t)); err != nil {
				return rows, err
			}
			rows++
		}
		if page >= meta.TotalPages || len(tasks) == 0 {
			break
		}
		page++
	}

	cw.Flush()
	return rows, cw.Error()
}

func exportRow(t model.Task) []string {
	assignee := t.AssigneeID
	if t.AssigneeDetails != nil && t.AssigneeDetails.Name != "" {
		assignee = t.AssigneeDetails.Name
	}
	creator := t.CreatorID
	if t.CreatorDetails != nil && t.CreatorDetails.Name != "" {
		creator = t.CreatorDetails.Name
	}
	alertDate := ""
	if t.AlertDate != nil {
		alertDate = t.AlertDate.UTC().Format("2006-01-02")
	}
	return []string{
		t.Code,
		t.Name,
		t.Status.Label(),
		t.Priority,
		assignee,
		creator,
		fmt.Sprintf("%v", t.AlertEnabled),
		alertDate,
		t.CreatedAt.UTC().Format(time.RFC3339),
		t.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
