package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow/internal/store"
	"github.com/taskflow/taskflow/internal/validation"
)

// NewThemeCmd creates the theme command group
func NewThemeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Get or set the UI theme preference",
	}
	cmd.AddCommand(newThemeGetCmd())
	cmd.AddCommand(newThemeSetCmd())
	return cmd
}

func newThemeGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Print the saved theme",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
				}
			}()

			value, found, err := st.Get(context.Background(), store.KeyTheme)
			if err != nil {
				return fmt.Errorf("failed to read theme: %w", err)
			}
			if !found {
				fmt.Println("light (default)")
				return nil
			}
			fmt.Println(string(value))
			return nil
		},
	}
}

func newThemeSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <light|dark>",
		Short: "Save the theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			theme := args[0]
			if err := validation.ValidateTheme(theme); err != nil {
				return err
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer func() {
				if err := st.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
				}
			}()

			if err := st.Set(context.Background(), store.KeyTheme, []byte(theme)); err != nil {
				return fmt.Errorf("failed to save theme: %w", err)
			}
			fmt.Printf("Theme set to %s\n", theme)
			return nil
		},
	}
}
