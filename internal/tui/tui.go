package tui

import (
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/api"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/cache"
	"github.com/OriginsHospital/origins-frontend-hms-sub000/internal/model"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive task browser. store may be nil; the offline
// list copy is then unavailable.
func Run(client *api.Client, user model.User, store *cache.Cache) error {
	applyColorProfilePreference()
	applyThemePreference()
	m := newAppModel(client, user, store)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
