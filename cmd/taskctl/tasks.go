package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"taskboard/board"
)

func newTasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Manage your task board",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Show the board by status",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := a.board(cmd.Context())
				if err != nil {
					return err
				}
				return printBoard(cmd.OutOrStdout(), a, b)
			},
		},
		newTaskAddCmd(a),
		&cobra.Command{
			Use:   "rm <task-id>",
			Short: "Delete a task",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := a.board(cmd.Context())
				if err != nil {
					return err
				}
				if err := b.RemoveTask(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Task deleted")
				if msg := b.Message(); msg != "" {
					fmt.Fprintln(cmd.OutOrStdout(), msg)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "next <task-id>",
			Short: "Move a task to its next status",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := a.board(cmd.Context())
				if err != nil {
					return err
				}
				task, ok := b.Task(args[0])
				if !ok {
					return fmt.Errorf("no task with id %s", args[0])
				}
				status, err := b.AdvanceStatus(cmd.Context(), task)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", task.Title, task.Status, status)
				return nil
			},
		},
	)
	return cmd
}

func newTaskAddCmd(a *app) *cobra.Command {
	var due, image, document string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task in the first column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := board.NewTask{Title: args[0]}
			if due != "" {
				t, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("--due must be YYYY-MM-DD: %w", err)
				}
				in.DueDate = &t
			}

			var err error
			var closer io.Closer
			if in.Image, closer, err = openFile(image); err != nil {
				return err
			} else if closer != nil {
				defer closer.Close()
			}
			if in.Document, closer, err = openFile(document); err != nil {
				return err
			} else if closer != nil {
				defer closer.Close()
			}

			b, err := a.board(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.AddTask(cmd.Context(), in); err != nil {
				return err
			}
			return printBoard(cmd.OutOrStdout(), a, b)
		},
	}

	f := cmd.Flags()
	f.StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	f.StringVar(&image, "image", "", "image attachment")
	f.StringVar(&document, "document", "", "document attachment")
	return cmd
}

// board builds the logged in user's board with tasks already fetched.
func (a *app) board(ctx context.Context) (*board.Model, error) {
	sess, err := a.session(ctx)
	if err != nil {
		return nil, err
	}
	b := board.New(a.api, sess, a.log)
	if _, err := b.ListTasks(ctx); err != nil {
		return nil, errors.New(b.Message())
	}
	return b, nil
}

func printBoard(out io.Writer, a *app, b *board.Model) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, col := range b.Columns() {
		fmt.Fprintf(w, "== %s (%d)\n", col.Status, len(col.Tasks))
		for _, t := range col.Tasks {
			due := "-"
			if t.DueDate != nil {
				due = t.DueDate.Format("2006-01-02")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, due,
				uploadURL(a.api, t.Image), uploadURL(a.api, t.Document))
		}
	}
	if msg := b.Message(); msg != "" {
		fmt.Fprintln(w, msg)
	}
	return w.Flush()
}
