package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/alexanderramin/wbs/internal/cli/formatter"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const defaultWatchDebounce = 300 * time.Millisecond

func newWatchCmd(app *App) *cobra.Command {
	var (
		projectID string
		debounce  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Import a snapshot file now and again every time it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			path := args[0]

			reimport := func() error {
				res, err := app.Import.ImportFile(ctx, path, projectID)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s", formatter.Dim(app.now().Format("15:04:05")), formatter.FormatImportResult(res))
				return nil
			}

			if err := reimport(); err != nil {
				reportImportFailure(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(out, formatter.Dim("Watching "+path+" (Ctrl+C to stop)"))
			return watchFile(ctx, path, debounce, reimport, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&projectID, "project", "", "Override the project id recorded in the file")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultWatchDebounce, "Quiet period before re-importing")
	return cmd
}

// watchFile calls onChange after path has been written, created or renamed
// into place and then left alone for debounce. The parent directory is
// watched so editors that replace the file atomically are still seen.
// Errors from onChange are reported to errOut and do not stop the watch.
// watchFile returns nil when ctx is cancelled.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func() error, errOut io.Writer) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			if err := onChange(); err != nil {
				reportImportFailure(errOut, err)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(errOut, formatter.StyleYellow.Render("watch error: "+err.Error()))
		}
	}
}

func reportImportFailure(w io.Writer, err error) {
	fmt.Fprintln(w, formatter.StyleRed.Render("import failed: "+err.Error()))
}
