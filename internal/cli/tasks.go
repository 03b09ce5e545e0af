package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"taskroom-cli/internal/api"
	"taskroom-cli/internal/model"
	"taskroom-cli/internal/render"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksDoneCmd(app))
	cmd.AddCommand(newTasksRmCmd(app))
	cmd.AddCommand(newTasksEditCmd(app))

	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (optionally filtered)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := apiClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := c.ListTasks(cmd.Context(), search)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Format == "json" {
				if tasks == nil {
					tasks = []model.Task{}
				}
				return writeJSON(cmd, app, tasks)
			}
			return writeText(cmd, render.Tasks(tasks))
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by title substring (empty matches all)")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var title string
	var description string
	var due string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(title) == "" {
				return writeErr(cmd, errors.New("missing --title"))
			}
			var duePtr *model.Date
			if strings.TrimSpace(due) != "" {
				d, err := model.ParseDate(due)
				if err != nil {
					return writeErr(cmd, err)
				}
				duePtr = &d
			}

			c, _, err := apiClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := c.CreateTask(cmd.Context(), title, description, duePtr)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Format == "json" {
				return writeJSON(cmd, app, task)
			}
			return writeText(cmd, render.Task(task))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title")
	cmd.Flags().StringVar(&description, "description", "", "Task description")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	return cmd
}

func taskIDArg(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected exactly one task id")
	}
	id, err := strconv.ParseInt(strings.TrimSpace(args[0]), 10, 64)
	if err != nil {
		return 0, errors.New("task id must be an integer")
	}
	return id, nil
}

func newTasksDoneCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <task-id>",
		Short: "Mark a task done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := taskIDArg(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, _, err := apiClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.CompleteTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			// Mutations re-fetch rather than trusting local state.
			return listAfterMutation(cmd, app, c)
		},
	}
}

func newTasksRmCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := taskIDArg(args)
			if err != nil {
				return writeErr(cmd, err)
			}
			c, _, err := apiClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := c.DeleteTask(cmd.Context(), id); err != nil {
				return writeErr(cmd, err)
			}
			return listAfterMutation(cmd, app, c)
		},
	}
}

func newTasksEditCmd(app *App) *cobra.Command {
	var title string
	var description string
	var due string

	cmd := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Edit a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := taskIDArg(args)
			if err != nil {
				return writeErr(cmd, err)
			}

			var fields api.UpdateTaskFields
			if cmd.Flags().Changed("title") {
				fields.Title = &title
			}
			if cmd.Flags().Changed("description") {
				fields.Description = &description
			}
			if cmd.Flags().Changed("due") {
				d, err := model.ParseDate(due)
				if err != nil {
					return writeErr(cmd, err)
				}
				fields.DueDate = &d
			}
			if fields == (api.UpdateTaskFields{}) {
				return writeErr(cmd, errors.New("nothing to change (pass --title, --description or --due)"))
			}

			c, _, err := apiClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			task, err := c.UpdateTask(cmd.Context(), id, fields)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.Format == "json" {
				return writeJSON(cmd, app, task)
			}
			return writeText(cmd, render.Task(task))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD)")
	return cmd
}

func listAfterMutation(cmd *cobra.Command, app *App, c *api.Client) error {
	tasks, err := c.ListTasks(cmd.Context(), "")
	if err != nil {
		return writeErr(cmd, err)
	}
	if app.Format == "json" {
		if tasks == nil {
			tasks = []model.Task{}
		}
		return writeJSON(cmd, app, tasks)
	}
	return writeText(cmd, render.Tasks(tasks))
}
