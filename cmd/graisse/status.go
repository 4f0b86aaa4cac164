package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	graisseprompt "github.com/manifolded/graisse-prompt-versioning"
)

var statusWatch bool

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show working directory drift against the current master",
	Long: `Classify every slot of the working directory against the current master:
new, modified, unchanged, or missing its backing file. With --watch the
status is reprinted whenever a fragment file changes.`,
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer ws.Close()

		if !statusWatch {
			if err := printStatus(cmd.Context(), ws); err != nil {
				fatal("Status failed", err)
			}
			return
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err := ws.Watch(ctx, func(ctx context.Context) error {
			return printStatus(ctx, ws)
		})
		if err != nil && ctx.Err() == nil {
			fatal("Watch failed", err)
		}
	},
}

func printStatus(ctx context.Context, ws *graisseprompt.Workspace) error {
	drifts, err := ws.Status(ctx)
	if err != nil {
		return err
	}
	for _, d := range drifts {
		version := ""
		if d.Version != "" {
			version = fmt.Sprintf(" (v%s)", d.Version)
		}
		fmt.Printf("%-10s %s%s\n", d.Kind, d.Type, version)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Reprint status on fragment file changes")
}
