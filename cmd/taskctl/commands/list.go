package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/query"
	"github.com/taskflow/taskflow/internal/validation"
)

// NewListCmd creates the list command
func NewListCmd() *cobra.Command {
	var (
		view     string
		priority string
		category string
		due      string
		search   string
		sortKey  string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Long:  "Run the query pipeline over the stored task list and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateView(view); err != nil {
				return err
			}
			if priority != query.FilterAll {
				if err := validation.ValidatePriority(priority); err != nil {
					return err
				}
			}
			if err := validation.ValidateDueFilter(due); err != nil {
				return err
			}
			if err := validation.ValidateSortKey(sortKey); err != nil {
				return err
			}

			ctx := context.Background()
			repo, st, err := openRepo(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
				}
			}()

			params := query.Params{
				View:     query.View(view),
				Priority: priority,
				Category: category,
				Due:      query.DueFilter(due),
				Search:   search,
				Sort:     query.SortKey(sortKey),
			}
			result := query.Apply(repo.List(), params, time.Now())

			if output == "table" {
				printTable(result)
				return nil
			}
			return writeOutput(cmd.OutOrStdout(), output, result)
		},
	}

	cmd.Flags().StringVar(&view, "view", string(query.ViewAll), "View: all, today, upcoming, important, completed")
	cmd.Flags().StringVar(&priority, "priority", query.FilterAll, "Priority filter: all, low, medium, high")
	cmd.Flags().StringVar(&category, "category", query.FilterAll, "Category filter (all for no narrowing)")
	cmd.Flags().StringVar(&due, "due", string(query.DueAll), "Due filter: all, overdue, today, upcoming, no-date")
	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive text search")
	cmd.Flags().StringVar(&sortKey, "sort", string(query.SortCreatedDesc), "Sort key")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, yaml")

	return cmd
}

func printTable(list []*models.Task) {
	if len(list) == 0 {
		fmt.Println("No tasks")
		return
	}
	for _, t := range list {
		mark := " "
		if t.Completed {
			mark = "x"
		}
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		fmt.Printf("[%s] %-36s  %-8s  %-10s  %s\n", mark, t.ID, t.Priority, due, t.Text)
	}
}
