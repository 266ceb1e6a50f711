package cli

import (
	"strings"

	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/config"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the stored session configuration",
	}
	cmd.AddCommand(newConfigShowCmd(app))
	cmd.AddCommand(newConfigSetCmd(app))
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored configuration (token redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			token := ""
			if cfg.Token != "" {
				token = "(set)"
			}
			return writeOut(cmd, app, map[string]any{
				"apiUrl": cfg.BaseURL,
				"token":  token,
				"userId": cfg.UserID,
				"name":   cfg.DisplayName,
				"role":   cfg.Role,
			})
		},
	}
}

func newConfigSetCmd(app *App) *cobra.Command {
	var (
		apiURL  string
		token   string
		userID  string
		name    string
		roleStr string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store session settings in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("api-url") {
				cfg.BaseURL = strings.TrimSpace(apiURL)
			}
			if cmd.Flags().Changed("token") {
				cfg.Token = token
			}
			if cmd.Flags().Changed("user") {
				cfg.UserID = strings.TrimSpace(userID)
			}
			if cmd.Flags().Changed("name") {
				cfg.DisplayName = strings.TrimSpace(name)
			}
			if cmd.Flags().Changed("role") {
				role, err := model.ParseRole(roleStr)
				if err != nil {
					return err
				}
				cfg.Role = string(role)
			}
			if err := config.Save(cfg); err != nil {
				return err
			}
			path, _ := config.Path()
			return writeOut(cmd, app, map[string]any{"saved": path})
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "API base URL")
	cmd.Flags().StringVar(&token, "token", "", "API bearer token")
	cmd.Flags().StringVar(&userID, "user", "", "Acting user id")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&roleStr, "role", "", "Role (admin|global_admin|manager|staff)")
	return cmd
}
