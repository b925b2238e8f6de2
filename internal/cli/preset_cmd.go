package cli

import (
	"fmt"

	"github.com/alexanderramin/wbs/internal/cli/formatter"
	"github.com/alexanderramin/wbs/internal/preset"
	"github.com/spf13/cobra"
)

func newPresetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage saved tree filters",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Presets == nil {
				return fmt.Errorf("presets are not configured")
			}
			return nil
		},
	}

	cmd.AddCommand(
		newPresetListCmd(app),
		newPresetSaveCmd(app),
		newPresetDeleteCmd(app),
	)

	return cmd
}

func newPresetListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved presets",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			presets, err := app.Presets.List()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPresets(presets))
			return nil
		},
	}
}

func newPresetSaveCmd(app *App) *cobra.Command {
	var filters filterFlags

	cmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save the given filter flags under a name, replacing any preset with that name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := preset.Preset{
				Name:     args[0],
				Assignee: filters.assignee,
				Due:      filters.due,
				Search:   filters.search,
			}
			for _, s := range filters.statuses.statuses {
				p.Statuses = append(p.Statuses, string(s))
			}
			if err := app.Presets.Save(p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s\n", p.Name)
			return nil
		},
	}

	filters.register(cmd)
	return cmd
}

func newPresetDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Aliases: []string{"rm"},
		Short:   "Delete a preset",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Presets.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", args[0])
			return nil
		},
	}
}
