package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/workflow"

	"github.com/charmbracelet/lipgloss"
)

const detailDateLayout = "2006-01-02 15:04"

// renderTaskDetail renders the right-hand detail pane for the open task:
// header, status line (interactive control or read-only badge), alert editor
// state, partial-failure banner and the newest-first comment thread.
func renderTaskDetail(co *workflow.Coordinator, width, height int) string {
	t := co.Task()
	var b strings.Builder

	title := lipgloss.NewStyle().Bold(true).Render(t.Code + "  " + t.Name)
	b.WriteString(title + "\n")

	b.WriteString(renderStatusLine(co) + "\n")

	meta := make([]string, 0, 3)
	if t.AssigneeDetails != nil && t.AssigneeDetails.Name != "" {
		meta = append(meta, "assignee: "+t.AssigneeDetails.Name)
	}
	if t.CreatorDetails != nil && t.CreatorDetails.Name != "" {
		meta = append(meta, "creator: "+t.CreatorDetails.Name)
	}
	if t.Priority != "" {
		meta = append(meta, "priority: "+t.Priority)
	}
	if len(meta) > 0 {
		b.WriteString(styleMuted().Render(strings.Join(meta, "   ")) + "\n")
	}

	b.WriteString(renderAlertLine(co.Alerts()) + "\n")

	if err := co.StatusErr(); err != nil {
		banner := styleWarn().Render(
			"comment recorded, status update failed: " + err.Error() + "  (t: retry status)")
		b.WriteString(banner + "\n")
	}

	if desc := strings.TrimSpace(t.Description); desc != "" {
		b.WriteString("\n" + renderMarkdown(desc, width) + "\n")
	}
	if remarks := strings.TrimSpace(t.Remarks); remarks != "" {
		b.WriteString(styleMuted().Render("remarks: "+remarks) + "\n")
	}

	b.WriteString("\n" + renderComments(co.Comments(), width))

	return normalizePane(b.String(), width, height)
}

// renderStatusLine shows either the interactive status control (with any
// staged transition) or a read-only badge when the session cannot change
// status.
func renderStatusLine(co *workflow.Coordinator) string {
	displayed := co.DisplayedStatus()
	if !co.ShowsStatusControl() {
		badge := lipgloss.NewStyle().Foreground(colorBadgeFg).Render("[" + displayed.Label() + "]")
		return badge + styleMuted().Render("  read-only")
	}

	line := "status: " + statusStyled(displayed)
	if p, ok := co.Pending(); ok {
		line += styleWarn().Render(fmt.Sprintf("  (pending: %s -> %s, comment required)",
			p.From.Label(), p.To.Label()))
	} else {
		line += styleMuted().Render("  (s: change)")
	}
	return line
}

func statusStyled(s model.Status) string {
	switch s {
	case model.StatusCompleted:
		return styleOK().Render(s.Label())
	case model.StatusCancelled:
		return styleMuted().Render(s.Label())
	default:
		return lipgloss.NewStyle().Foreground(colorAccent).Render(s.Label())
	}
}

func renderAlertLine(r *workflow.AlertReconciler) string {
	d := r.Draft()
	line := "alert: "
	if d.Enabled {
		line += "on"
	} else {
		line += "off"
	}
	if d.Date != nil {
		line += " " + d.Date.UTC().Format("2006-01-02")
	}
	if r.HasChanged() {
		return line + styleWarn().Render("  (unsaved, w: save)")
	}
	return line + styleMuted().Render("  (a: toggle, d: date)")
}

func renderComments(comments []model.Comment, width int) string {
	if len(comments) == 0 {
		return styleMuted().Render("No comments yet.  (c: comment)")
	}
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Comments (%d)", len(comments))) + "\n")
	for _, cm := range comments {
		author := cm.AuthorDisplayName
		if author == "" {
			author = cm.AuthorID
		}
		head := fmt.Sprintf("%s  %s", author, cm.CreatedAt.Local().Format(detailDateLayout))
		b.WriteString(styleMuted().Render(head) + "\n")
		b.WriteString(renderMarkdown(cm.Text, width-2) + "\n")
	}
	return b.String()
}

func relativeAge(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
