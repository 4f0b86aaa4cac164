package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoID int64

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show details of a master and its fragments",
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer ws.Close()

		master, frags, err := ws.Snapshot(cmd.Context(), infoID)
		if err != nil {
			fatal("Failed to resolve master", err)
		}

		current := ""
		if master.IsCurrent {
			current = " (current)"
		}
		fmt.Printf("master %d v%s%s\n", master.ID, master.Version, current)
		fmt.Printf("  message: %s\n", master.CommitMessage)
		fmt.Printf("  created: %s\n", master.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("  fragments:\n")
		for _, f := range frags {
			fmt.Printf("    %4d  v%-8s %s\n", f.ID, f.Version, f.Type)
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().Int64Var(&infoID, "id", 0, "Master id (default: current)")
}
