package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/api"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/cache"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/config"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/format"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	BaseURL    string
	Token      string
	UserID     string
	UserName   string
	Role       string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "origins",
		Short:        "Origins HMS task client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  origins

  # Scriptable commands
  origins tasks list --status pending
  origins tasks show task-104

  # A status change always carries its audit comment
  origins tasks set-status task-104 in_progress --comment "Starting work"
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.BaseURL, "api-url", envOr("ORIGINS_API_URL", ""), "Origins HMS API base URL (overrides config file)")
	cmd.PersistentFlags().StringVar(&app.Token, "token", envOr("ORIGINS_API_TOKEN", ""), "API bearer token (overrides config file)")
	cmd.PersistentFlags().StringVar(&app.UserID, "user", envOr("ORIGINS_USER", ""), "Acting user id (overrides config file)")
	cmd.PersistentFlags().StringVar(&app.UserName, "name", envOr("ORIGINS_NAME", ""), "Acting user display name (overrides config file)")
	cmd.PersistentFlags().StringVar(&app.Role, "role", envOr("ORIGINS_ROLE", ""), "Acting user role (admin|global_admin|manager|staff)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(app *App) error {
	client, user, err := loadSession(app)
	if err != nil {
		return err
	}
	var store *cache.Cache
	if path, err := config.CachePath(); err == nil {
		// The cache is an optimization; the TUI works without it.
		if c, err := cache.Open(path); err == nil {
			store = c
			defer func() { _ = store.Close() }()
		}
	}
	return tui.Run(client, user, store)
}

// loadSession resolves the API client and acting user with flag > env >
// config-file precedence (flags default from env already).
func loadSession(app *App) (*api.Client, model.User, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, model.User{}, err
	}

	baseURL := strings.TrimSpace(app.BaseURL)
	if baseURL == "" {
		baseURL = strings.TrimSpace(cfg.BaseURL)
	}
	if baseURL == "" {
		return nil, model.User{}, fmt.Errorf("no API base URL; pass --api-url, set ORIGINS_API_URL, or run `origins config set --api-url ...`")
	}

	token := app.Token
	if token == "" {
		token = cfg.Token
	}

	userID := strings.TrimSpace(app.UserID)
	if userID == "" {
		userID = strings.TrimSpace(cfg.UserID)
	}

	roleStr := strings.TrimSpace(app.Role)
	if roleStr == "" {
		roleStr = strings.TrimSpace(cfg.Role)
	}
	role, err := model.ParseRole(roleStr)
	if err != nil {
		return nil, model.User{}, err
	}

	name := strings.TrimSpace(app.UserName)
	if name == "" {
		name = strings.TrimSpace(cfg.DisplayName)
	}

	user := model.User{ID: userID, DisplayName: name, Role: role}
	return api.NewClient(baseURL, token), user, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
