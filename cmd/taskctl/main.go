package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskflow/taskflow/cmd/taskctl/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "taskctl",
		Short: "Admin tool for the TaskFlow API",
		Long:  "CLI tool for inspecting, exporting and importing the task store",
	}

	rootCmd.AddCommand(commands.NewListCmd())
	rootCmd.AddCommand(commands.NewExportCmd())
	rootCmd.AddCommand(commands.NewImportCmd())
	rootCmd.AddCommand(commands.NewThemeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
