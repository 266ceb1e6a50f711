package tasklist

import (
	"strings"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/api"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
)

const DefaultPageSize = 25

// Controller holds the filter/search/pagination state of the task list
// screen and coalesces overlapping fetches: every state change bumps a
// sequence number, and a page response tagged with a superseded sequence is
// discarded instead of overwriting newer results.
type Controller struct {
	filters api.ListFilters
	page    int
	limit   int

	seq   int
	tasks []model.Task
	meta  model.Page
}

func NewController() *Controller {
	return &Controller{page: 1, limit: DefaultPageSize, seq: 1}
}

func (c *Controller) Filters() api.ListFilters { return c.filters }
func (c *Controller) Page() int                { return c.page }
func (c *Controller) Limit() int               { return c.limit }
func (c *Controller) Seq() int                 { return c.seq }
func (c *Controller) Tasks() []model.Task      { return c.tasks }
func (c *Controller) Meta() model.Page         { return c.meta }

func (c *Controller) bump() int {
	c.seq++
	return c.seq
}

// SetSearch replaces the search term and rewinds to the first page.
// Returns the sequence number the next fetch must carry.
func (c *Controller) SetSearch(term string) int {
	c.filters.Search = strings.TrimSpace(term)
	c.page = 1
	return c.bump()
}

// SetStatusFilter narrows the list to one status (nil = any) and rewinds to
// the first page.
func (c *Controller) SetStatusFilter(status *model.Status) int {
	c.filters.Status = status
	c.page = 1
	return c.bump()
}

func (c *Controller) SetLimit(limit int) int {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	c.limit = limit
	c.page = 1
	return c.bump()
}

// NextPage advances when another page exists; returns the fetch sequence and
// whether the page actually moved.
func (c *Controller) NextPage() (int, bool) {
	if c.meta.TotalPages > 0 && c.page >= c.meta.TotalPages {
		return c.seq, false
	}
	c.page++
	return c.bump(), true
}

func (c *Controller) PrevPage() (int, bool) {
	if c.page <= 1 {
		return c.seq, false
	}
	c.page--
	return c.bump(), true
}

// Apply folds a fetched page into the controller. Stale responses (seq no
// longer current) are dropped; the caller can tell from the return value.
func (c *Controller) Apply(seq int, tasks []model.Task, meta model.Page) bool {
	if seq != c.seq {
		return false
	}
	c.tasks = tasks
	c.meta = meta
	return true
}
