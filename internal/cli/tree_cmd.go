package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/wbs/internal/cli/formatter"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/alexanderramin/wbs/internal/treestate"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

const defaultTreeWidth = 100

func newTreeCmd(app *App) *cobra.Command {
	var (
		filters     filterFlags
		presetName  string
		expandAll   bool
		interactive bool
		width       int
	)
	output := outputText

	cmd := &cobra.Command{
		Use:   "tree <project>",
		Short: "Show the phase, group, item and task tree with rolled-up progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.now()
			filter, err := resolveFilter(app, cmd, &filters, presetName, now)
			if err != nil {
				return err
			}

			if interactive {
				if !app.Interactive {
					return fmt.Errorf("--interactive needs a terminal")
				}
				m := newTreeModel(cmd.Context(), app, args[0], filter)
				_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
				return err
			}

			res, err := app.Tree.Tree(cmd.Context(), service.TreeRequest{ProjectID: args[0], Filter: filter, Now: &now})
			if err != nil {
				return err
			}
			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, newTreeDoc(res, now))
			}

			exp := treestate.NewExpansion(res.Phases)
			if expandAll || res.Filtered {
				exp.ExpandAll(res.Phases)
			}
			writeTreeText(cmd.OutOrStdout(), res, exp, now, width)
			return nil
		},
	}

	filters.register(cmd)
	cmd.Flags().StringVar(&presetName, "preset", "", "Start from a saved filter preset; explicit flags override it")
	cmd.Flags().BoolVarP(&expandAll, "expand-all", "a", false, "Expand every group and item")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Browse the tree in a terminal UI")
	cmd.Flags().IntVar(&width, "width", defaultTreeWidth, "Maximum line width")
	cmd.Flags().VarP(&output, "output", "o", "Output format: text, json, yaml")
	return cmd
}

// resolveFilter loads the named preset, if any, and overlays explicit flags.
func resolveFilter(app *App, cmd *cobra.Command, flags *filterFlags, presetName string, now time.Time) (treestate.Filter, error) {
	base := treestate.Filter{Now: now}
	if presetName != "" {
		if app.Presets == nil {
			return base, fmt.Errorf("presets are not configured")
		}
		p, err := app.Presets.Get(presetName)
		if err != nil {
			return base, err
		}
		if base, err = p.Filter(now); err != nil {
			return base, err
		}
	}
	return flags.apply(cmd, base)
}

func writeTreeText(w io.Writer, res *service.TreeResult, exp *treestate.Expansion, now time.Time, width int) {
	header := formatter.Header(res.ProjectID) + "  " + formatter.RenderProgress(res.Progress, 20)
	if res.Filtered {
		header += "  " + formatter.Dim("(filtered)")
	}
	fmt.Fprintln(w, header)

	rows := treestate.Flatten(res.Phases, exp)
	if len(rows) == 0 {
		fmt.Fprintln(w, formatter.Dim("  Nothing matches."))
	} else {
		fmt.Fprint(w, formatter.RenderTree(rows, formatter.TreeOptions{Now: now, Width: width, Cursor: -1}))
	}

	if n := len(res.Orphans); n > 0 {
		fmt.Fprintln(w, formatter.StyleYellow.Render(fmt.Sprintf("! %d record(s) skipped: parent missing or unreachable", n)))
		for _, o := range res.Orphans {
			fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("  %s %s -> %s", o.Kind, o.ID, o.ParentID)))
		}
	}
}
