package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/api"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/cache"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/config"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/tasklist"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/workflow"

	"github.com/spf13/cobra"
)

const alertDateLayout = "2006-01-02"

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and work on operational tasks",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCommentCmd(app))
	cmd.AddCommand(newTasksSetStatusCmd(app))
	cmd.AddCommand(newTasksRetryStatusCmd(app))
	cmd.AddCommand(newTasksAlertCmd(app))
	cmd.AddCommand(newTasksExportCmd(app))
	return cmd
}

func parseListFilters(statusStr, search string) (api.ListFilters, error) {
	f := api.ListFilters{Search: strings.TrimSpace(search)}
	if strings.TrimSpace(statusStr) != "" {
		st, err := model.ParseStatus(statusStr)
		if err != nil {
			return api.ListFilters{}, err
		}
		f.Status = &st
	}
	return f, nil
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		statusStr string
		search    string
		page      int
		limit     int
		cached    bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with optional status and search filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if cached {
				path, err := config.CachePath()
				if err != nil {
					return err
				}
				store, err := cache.Open(path)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				tasks, fetchedAt, err := store.Tasks(ctx)
				if err != nil {
					return err
				}
				return writeOut(cmd, app, map[string]any{
					"data": tasks,
					"meta": map[string]any{
						"cached":    true,
						"fetchedAt": fetchedAt.Format(time.RFC3339),
						"total":     len(tasks),
					},
				})
			}

			client, _, err := loadSession(app)
			if err != nil {
				return err
			}
			filters, err := parseListFilters(statusStr, search)
			if err != nil {
				return err
			}
			tasks, meta, err := client.ListTasks(ctx, filters, page, limit)
			if err != nil {
				return writeErr(cmd, err)
			}

			// Refresh the offline copy; listing still succeeds if this fails.
			if path, err := config.CachePath(); err == nil {
				if store, err := cache.Open(path); err == nil {
					_ = store.PutTasks(ctx, tasks)
					_ = store.Close()
				}
			}

			return writeOut(cmd, app, map[string]any{
				"data": tasks,
				"meta": meta,
			})
		},
	}
	cmd.Flags().StringVar(&statusStr, "status", "", "Filter by status (pending|in_progress|completed|cancelled)")
	cmd.Flags().StringVar(&search, "search", "", "Free-text search")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", tasklist.DefaultPageSize, "Page size")
	cmd.Flags().BoolVar(&cached, "cached", false, "Serve the local offline copy instead of calling the API")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadSession(app)
			if err != nil {
				return err
			}
			t, err := client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}
	return cmd
}

func newTasksCommentCmd(app *App) *cobra.Command {
	var body string
	cmd := &cobra.Command{
		Use:   "comment <task-id>",
		Short: "Add a comment to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadSession(app)
			if err != nil {
				return err
			}
			p := workflow.NewPipeline(client)
			out := p.Submit(cmd.Context(), args[0], body, nil)
			if out.Kind != workflow.OutcomeFullSuccess {
				return writeErr(cmd, out.Err)
			}
			return writeOut(cmd, app, map[string]any{"data": out.Comment})
		},
	}
	cmd.Flags().StringVarP(&body, "body", "b", "", "Comment text (required)")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func newTasksSetStatusCmd(app *App) *cobra.Command {
	var comment string
	cmd := &cobra.Command{
		Use:   "set-status <task-id> <status>",
		Short: "Change a task's status, recording the mandatory audit comment first",
		Long: strings.TrimSpace(`
Change a task's status. The comment is written first and the status second;
when the comment lands but the status update fails, the command reports a
partial result and the comment is NOT resubmitted on retry. Use
"origins tasks retry-status" to re-attempt only the status update.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, user, err := loadSession(app)
			if err != nil {
				return err
			}
			next, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}

			co, err := workflow.Open(ctx, client, user, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := co.RequestStatus(next); err != nil {
				return writeErr(cmd, fmt.Errorf("%w: role %s cannot change the status of task %s", err, user.Role, args[0]))
			}
			co.SetDraftComment(comment)

			out := co.SubmitComment(ctx)
			switch out.Kind {
			case workflow.OutcomeFullSuccess:
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{
						"task":    co.Task(),
						"comment": out.Comment,
					},
				})
			case workflow.OutcomePartialSuccess:
				fmt.Fprintf(cmd.ErrOrStderr(),
					"comment recorded, but the status update failed: %v\n", out.StatusErr)
				fmt.Fprintf(cmd.ErrOrStderr(),
					"re-run `origins tasks retry-status %s %s` to retry the status only; the comment will not be duplicated\n",
					args[0], next)
				return fmt.Errorf("status update failed after the comment was recorded")
			default:
				return writeErr(cmd, out.Err)
			}
		},
	}
	cmd.Flags().StringVarP(&comment, "comment", "c", "", "Audit comment explaining the change (required)")
	_ = cmd.MarkFlagRequired("comment")
	return cmd
}

func newTasksRetryStatusCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry-status <task-id> <status>",
		Short: "Re-attempt only the status half of a partially failed change",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, _, err := loadSession(app)
			if err != nil {
				return err
			}
			next, err := model.ParseStatus(args[1])
			if err != nil {
				return err
			}

			t, err := client.GetTask(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if t.Status == next {
				// The earlier attempt landed after all; nothing to do.
				return writeOut(cmd, app, map[string]any{
					"data": t,
					"meta": map[string]any{"alreadyApplied": true},
				})
			}

			p := workflow.NewPipeline(client)
			out := p.RetryStatus(ctx, args[0], workflow.PendingTransition{From: t.Status, To: next})
			if out.Kind != workflow.OutcomeFullSuccess {
				return writeErr(cmd, fmt.Errorf("status update failed again: %w", out.StatusErr))
			}
			return writeOut(cmd, app, map[string]any{"data": out.Task})
		},
	}
	return cmd
}

func newTasksAlertCmd(app *App) *cobra.Command {
	var (
		enabled bool
		dateStr string
	)
	cmd := &cobra.Command{
		Use:   "alert <task-id>",
		Short: "Update a task's alert configuration",
		Long: strings.TrimSpace(`
Update a task's alert configuration. Only a real change is written: saving
the current values again performs no network call. Dates compare at day
granularity; pass --date none to clear the date.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, _, err := loadSession(app)
			if err != nil {
				return err
			}
			t, err := client.GetTask(ctx, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}

			r := workflow.NewAlertReconciler(client, t.ID, t.Alert())
			if cmd.Flags().Changed("enabled") {
				r.SetEnabled(enabled)
			}
			if cmd.Flags().Changed("date") {
				if strings.EqualFold(dateStr, "none") {
					r.SetDate(nil)
				} else {
					d, err := time.ParseInLocation(alertDateLayout, dateStr, time.UTC)
					if err != nil {
						return fmt.Errorf("parse --date: %w", err)
					}
					r.SetDate(&d)
				}
			}

			updated, err := r.Commit(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			if updated == nil {
				return writeOut(cmd, app, map[string]any{
					"data": t,
					"meta": map[string]any{"changed": false},
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": updated,
				"meta": map[string]any{"changed": true},
			})
		},
	}
	cmd.Flags().BoolVar(&enabled, "enabled", false, "Enable or disable the alert")
	cmd.Flags().StringVar(&dateStr, "date", "", "Alert date (YYYY-MM-DD, or \"none\" to clear)")
	return cmd
}

func newTasksExportCmd(app *App) *cobra.Command {
	var (
		statusStr string
		search    string
		outPath   string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the filtered task list as CSV, merging all pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := loadSession(app)
			if err != nil {
				return err
			}
			filters, err := parseListFilters(statusStr, search)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			rows, err := tasklist.ExportCSV(cmd.Context(), client, filters, w)
			if err != nil {
				return writeErr(cmd, err)
			}
			if outPath != "" && outPath != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d tasks to %s\n", rows, outPath)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&statusStr, "status", "", "Filter by status")
	cmd.Flags().StringVar(&search, "search", "", "Free-text search")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}
