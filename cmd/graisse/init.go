package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	graisseprompt "github.com/manifolded/graisse-prompt-versioning"
)

var initDatabase string

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a graisse workspace in the current directory",
	Long: `Initialize a new workspace: write the .graisse dotfile (unless one exists)
and create the store schema. Fails if the store is already initialized.`,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}

		ws, err := graisseprompt.Init(cmd.Context(), cwd, initDatabase,
			graisseprompt.WithLogger(slog.Default()))
		if err != nil {
			fatal("Failed to initialize workspace", err)
		}
		defer ws.Close()

		fmt.Println("Initialized graisse store at", ws.Config.Database)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDatabase, "database", "", "Database path to record in the dotfile (default prompts.db)")
}
