package model

import "time"

type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}

type Comment struct {
	ID                string    `json:"id"`
	AuthorID          string    `json:"authorId"`
	AuthorDisplayName string    `json:"authorDisplayName"`
	AuthorRole        Role      `json:"authorRole"`
	Text              string    `json:"text"`
	CreatedAt         time.Time `json:"createdAt"`
}

type Task struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Remarks     string `json:"remarks,omitempty"`
	Status      Status `json:"status"`
	Priority    string `json:"priority,omitempty"`

	AssigneeID      string   `json:"assigneeId,omitempty"`
	AssigneeDetails *UserRef `json:"assigneeDetails,omitempty"`
	CreatorID       string   `json:"creatorId"`
	CreatorDetails  *UserRef `json:"creatorDetails,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	AlertEnabled bool       `json:"alertEnabled"`
	AlertDate    *time.Time `json:"alertDate,omitempty"`

	// Comments arrive in creation order from the server. Views that want
	// newest-first must sort a copy (see Task.CommentsNewestFirst).
	Comments []Comment `json:"comments,omitempty"`
}

func (t Task) Alert() AlertSetting {
	return AlertSetting{Enabled: t.AlertEnabled, Date: t.AlertDate}
}

// CommentsNewestFirst returns a copy of the comment list sorted by CreatedAt
// descending. The underlying slice keeps creation order.
func (t Task) CommentsNewestFirst() []Comment {
	out := make([]Comment, len(t.Comments))
	copy(out, t.Comments)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	// The server sends creation order, but be defensive about ties/out-of-order
	// entries after partial refetches.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].CreatedAt.After(out[j-1].CreatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// AlertSetting is the persisted alert configuration of a task, compared at
// day granularity when deciding whether an edit is worth writing back.
type AlertSetting struct {
	Enabled bool       `json:"alertEnabled"`
	Date    *time.Time `json:"alertDate,omitempty"`
}

func (a AlertSetting) Equal(b AlertSetting) bool {
	if a.Enabled != b.Enabled {
		return false
	}
	if (a.Date == nil) != (b.Date == nil) {
		return false
	}
	if a.Date == nil {
		return true
	}
	return sameDay(*a.Date, *b.Date)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Page is the pagination block returned by list endpoints.
type Page struct {
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
