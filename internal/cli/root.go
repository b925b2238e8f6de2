package cli

import (
	"time"

	"github.com/alexanderramin/wbs/internal/preset"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Import  service.ImportService
	Tree    service.TreeService
	Tasks   service.TaskService
	Sync    service.SyncService
	Presets *preset.Store

	// Interactive is set when stdout is a terminal; forms and the tree
	// browser refuse to start otherwise.
	Interactive bool
	// Clock overrides time.Now for due badges and filters.
	Clock func() time.Time
}

func (a *App) now() time.Time {
	if a.Clock != nil {
		return a.Clock()
	}
	return time.Now().UTC()
}

// NewRootCmd creates the top-level "wbs" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "wbs",
		Short:         "Work breakdown structure progress tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newImportCmd(app),
		newPullCmd(app),
		newExportCmd(app),
		newTreeCmd(app),
		newSummaryCmd(app),
		newProjectsCmd(app),
		newTaskCmd(app),
		newPresetCmd(app),
		newWatchCmd(app),
	)

	return root
}
