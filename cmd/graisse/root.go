package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	graisseprompt "github.com/manifolded/graisse-prompt-versioning"
)

var (
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "graisse",
	Short: "Version control for composed prompts",
	Long: `Graisse keeps the fragments of a composed prompt under version control.
Each slot of the prompt lives in its own numbered fragment file; committing
reconciles the working directory against a SQLite store, reusing unchanged
content and versioning what changed.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// openWorkspace resolves the workspace from the current directory.
func openWorkspace(cmd *cobra.Command) *graisseprompt.Workspace {
	cwd, err := os.Getwd()
	if err != nil {
		fatal("Failed to get CWD", err)
	}

	ws, err := graisseprompt.Open(cmd.Context(), cwd, graisseprompt.WithLogger(slog.Default()))
	if err != nil {
		fatal("Failed to open workspace", err)
	}
	return ws
}
