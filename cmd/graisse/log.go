package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// logCmd represents the log command
var logCmd = &cobra.Command{
	Use:   "log",
	Short: "List all masters, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer ws.Close()

		masters, err := ws.History(cmd.Context())
		if err != nil {
			fatal("Failed to read history", err)
		}

		for _, m := range masters {
			marker := " "
			if m.IsCurrent {
				marker = "*"
			}
			fmt.Printf("%s %4d  v%-8s %s  %s\n",
				marker, m.ID, m.Version, m.CreatedAt.Format("2006-01-02 15:04"), m.CommitMessage)
		}
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}
