package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow/internal/tasks"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full task list",
		Long:  "Print the versioned export payload; pipe it to a file for backups",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, st, err := openRepo(context.Background())
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
				}
			}()

			payload := tasks.Export(repo.List())
			return writeOutput(cmd.OutOrStdout(), output, payload)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "json", "Output format: json, yaml")
	return cmd
}
