package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/wbs/internal/cli/formatter"
	"github.com/alexanderramin/wbs/internal/importer"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	var projectID string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace a project's local snapshot with a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Import.ImportFile(cmd.Context(), args[0], projectID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Override the project id recorded in the file")
	return cmd
}

func newPullCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pull <project>",
		Short: "Fetch a project from the API and replace the local snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Sync.Pull(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			return nil
		},
	}
}

func newExportCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Write a project's local snapshot as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := app.Tree.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if file == "" {
				return importer.EncodeSnapshot(cmd.OutOrStdout(), snap)
			}

			f, err := os.Create(file)
			if err != nil {
				return fmt.Errorf("creating %s: %w", file, err)
			}
			if err := importer.EncodeSnapshot(f, snap); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", args[0], file)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Write to this path instead of stdout")
	return cmd
}

func newSummaryCmd(app *App) *cobra.Command {
	output := outputText

	cmd := &cobra.Command{
		Use:   "summary <project>",
		Short: "Show progress and attention counts for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.now()
			res, err := app.Tree.Summary(cmd.Context(), service.SummaryRequest{ProjectID: args[0], Now: &now})
			if err != nil {
				return err
			}
			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, newSummaryDoc(res))
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSummary(res, now))
			return nil
		},
	}

	cmd.Flags().VarP(&output, "output", "o", "Output format: text, json, yaml")
	return cmd
}

func newProjectsCmd(app *App) *cobra.Command {
	output := outputText

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List imported projects with their overall progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			projects, err := app.Tree.Projects(cmd.Context())
			if err != nil {
				return err
			}
			if output != outputText {
				docs := make([]projectDoc, 0, len(projects))
				for _, p := range projects {
					docs = append(docs, newProjectDoc(p))
				}
				return writeStructured(cmd.OutOrStdout(), output, docs)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatProjects(projects, app.now()))
			return nil
		},
	}

	cmd.Flags().VarP(&output, "output", "o", "Output format: text, json, yaml")
	return cmd
}
