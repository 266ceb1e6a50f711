package tasklist

import (
	"testing"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

func TestApply_DiscardsStaleResponses(t *testing.T) {
	c := NewController()

	seq1 := c.SetSearch("iso")
	seq2 := c.SetSearch("isolation")
	if seq1 == seq2 {
		t.Fatalf("each change must bump the sequence")
	}

	// The slower response for the superseded query arrives last; it must not
	// overwrite the newer result.
	if !c.Apply(seq2, []model.Task{{ID: "task-2"}}, model.Page{Total: 1, TotalPages: 1}) {
		t.Fatalf("current response must apply")
	}
	if c.Apply(seq1, []model.Task{{ID: "task-1"}}, model.Page{Total: 1, TotalPages: 1}) {
		t.Fatalf("stale response must be discarded")
	}
	if got := c.Tasks(); len(got) != 1 || got[0].ID != "task-2" {
		t.Fatalf("unexpected tasks: %+v", got)
	}
}

func TestSetSearch_RewindsToFirstPage(t *testing.T) {
	c := NewController()
	c.Apply(c.Seq(), nil, model.Page{Total: 100, TotalPages: 4})
	if _, ok := c.NextPage(); !ok {
		t.Fatalf("expected page advance")
	}
	c.SetSearch("x-ray")
	if c.Page() != 1 {
		t.Fatalf("search must rewind to page 1; got %d", c.Page())
	}
}

func TestPaging_Bounds(t *testing.T) {
	c := NewController()
	c.Apply(c.Seq(), nil, model.Page{Total: 30, TotalPages: 2})

	if _, ok := c.PrevPage(); ok {
		t.Fatalf("cannot go before page 1")
	}
	if _, ok := c.NextPage(); !ok {
		t.Fatalf("expected advance to page 2")
	}
	if _, ok := c.NextPage(); ok {
		t.Fatalf("cannot advance past the last page")
	}
	if _, ok := c.PrevPage(); !ok {
		t.Fatalf("expected return to page 1")
	}
}

func TestSetStatusFilter_BumpsSequence(t *testing.T) {
	c := NewController()
	st := model.StatusCompleted
	seq := c.SetStatusFilter(&st)
	if seq != c.Seq() {
		t.Fatalf("returned sequence must be current")
	}
	if c.Filters().Status == nil || *c.Filters().Status != model.StatusCompleted {
		t.Fatalf("filter not applied: %+v", c.Filters())
	}
}
