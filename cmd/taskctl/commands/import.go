package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow/internal/tasks"
)

// NewImportCmd creates the import command
func NewImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a task list, replacing the stored one",
		Long:  "Read an export payload from the given file (or stdin) and replace the stored task list with it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data []byte
			var err error
			if len(args) == 1 && args[0] != "-" {
				data, err = os.ReadFile(args[0])
			} else {
				data, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return fmt.Errorf("failed to read payload: %w", err)
			}

			list, err := tasks.ParseImport(data, time.Now())
			if err != nil {
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

			if err := repo.Replace(ctx, list); err != nil {
				return fmt.Errorf("failed to store imported tasks: %w", err)
			}
			fmt.Printf("Imported %d tasks\n", len(list))
			return nil
		},
	}
	return cmd
}
