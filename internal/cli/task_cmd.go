package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/wbs/internal/backend"
	"github.com/alexanderramin/wbs/internal/cli/formatter"
	"github.com/alexanderramin/wbs/internal/domain"
	"github.com/alexanderramin/wbs/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newTaskCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, update and remove tasks",
	}

	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskShowCmd(app),
		newTaskProgressCmd(app),
		newTaskStatusCmd(app),
		newTaskEditCmd(app),
		newTaskRemoveCmd(app),
	)

	return cmd
}

func newTaskAddCmd(app *App) *cobra.Command {
	var (
		name, code, desc     string
		status               string
		progress             int
		weight, hours        float64
		assignee, assigneeID string
		due                  string
	)

	cmd := &cobra.Command{
		Use:   "add <item-id>",
		Short: "Add a task under an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := service.CreateTaskRequest{
				ItemID:      args[0],
				Name:        name,
				Code:        code,
				Description: desc,
				Progress:    progress,
			}
			if status != "" {
				s, err := domain.ParseStatus(strings.ToUpper(status))
				if err != nil {
					return err
				}
				req.Status = s
			}
			if cmd.Flags().Changed("weight") {
				req.Weight = &weight
			}
			if cmd.Flags().Changed("hours") {
				req.EstimatedHours = &hours
			}
			if assignee != "" {
				req.AssigneeName = &assignee
			}
			if assigneeID != "" {
				req.AssigneeID = &assigneeID
			}
			end, err := parseDueFlag(due)
			if err != nil {
				return err
			}
			req.PlannedEndDate = end

			task, err := app.Tasks.Create(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s\n", task.ID)
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(task, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Task name (required)")
	cmd.Flags().StringVar(&code, "code", "", "WBS code")
	cmd.Flags().StringVar(&desc, "description", "", "Description")
	cmd.Flags().StringVar(&status, "status", "", "Initial status (default NOT_STARTED)")
	cmd.Flags().IntVar(&progress, "progress", 0, "Initial progress 0-100")
	cmd.Flags().Float64Var(&weight, "weight", 100, "Weight among sibling tasks 0-100")
	cmd.Flags().Float64Var(&hours, "hours", 0, "Estimated hours")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Assignee display name")
	cmd.Flags().StringVar(&assigneeID, "assignee-id", "", "Assignee id")
	cmd.Flags().StringVar(&due, "due", "", "Planned end date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTaskShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.Tasks.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(task, app.now()))
			return nil
		},
	}
}

func newTaskProgressCmd(app *App) *cobra.Command {
	var push bool

	cmd := &cobra.Command{
		Use:   "progress <task-id> <percent>",
		Short: "Set a task's progress",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pct, err := strconv.Atoi(strings.TrimSuffix(args[1], "%"))
			if err != nil {
				return fmt.Errorf("progress must be a whole number: %q", args[1])
			}

			var task *domain.Task
			if push {
				task, err = app.Sync.PushTask(cmd.Context(), args[0], backend.TaskPatch{Progress: &pct})
			} else {
				task, err = app.Tasks.UpdateProgress(cmd.Context(), args[0], pct)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(task, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&push, "push", false, "Send the change to the API before saving it locally")
	return cmd
}

func newTaskStatusCmd(app *App) *cobra.Command {
	var push bool

	cmd := &cobra.Command{
		Use:   "status <task-id> <status>",
		Short: "Set a task's status",
		Long:  "Set a task's status. One of NOT_STARTED, IN_PROGRESS, COMPLETED, ON_HOLD, CANCELLED.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseStatus(strings.ToUpper(args[1]))
			if err != nil {
				return err
			}

			var task *domain.Task
			if push {
				raw := string(status)
				task, err = app.Sync.PushTask(cmd.Context(), args[0], backend.TaskPatch{Status: &raw})
			} else {
				task, err = app.Tasks.UpdateStatus(cmd.Context(), args[0], status)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(task, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&push, "push", false, "Send the change to the API before saving it locally")
	return cmd
}

func newTaskEditCmd(app *App) *cobra.Command {
	var (
		name, status, assignee string
		progress               int
	)

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task's name, status, progress or assignee",
		Long:  "Edit a task. Without flags an interactive form is shown.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			task, err := app.Tasks.GetByID(ctx, args[0])
			if err != nil {
				return err
			}

			fields := newTaskEditFields(task)
			flags := cmd.Flags()
			if flags.NFlag() == 0 {
				if !app.Interactive {
					return fmt.Errorf("task edit needs a terminal or at least one flag")
				}
				if err := fields.form().Run(); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
						return nil
					}
					return err
				}
			} else {
				if flags.Changed("name") {
					fields.Name = name
				}
				if flags.Changed("status") {
					fields.Status = strings.ToUpper(status)
				}
				if flags.Changed("progress") {
					fields.Progress = strconv.Itoa(progress)
				}
				if flags.Changed("assignee") {
					fields.Assignee = assignee
				}
			}

			edit, err := fields.toEdit(task)
			if err != nil {
				return err
			}
			if edit == (service.TaskEdit{}) {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
				return nil
			}

			updated, err := app.Tasks.Edit(ctx, task.ID, edit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTask(updated, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&status, "status", "", "New status")
	cmd.Flags().IntVar(&progress, "progress", 0, "New progress 0-100")
	cmd.Flags().StringVar(&assignee, "assignee", "", "New assignee name; empty clears it")
	return cmd
}

func newTaskRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tasks.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}
}
