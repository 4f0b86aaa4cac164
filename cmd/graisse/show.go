package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showID int64

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the composed prompt of a master",
	Long: `Concatenate the fragments of a master in slot order, each preceded by a
[type] marker line.`,
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer ws.Close()

		out, err := ws.Render(cmd.Context(), showID)
		if err != nil {
			fatal("Failed to render master", err)
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Int64Var(&showID, "id", 0, "Master id (default: current)")
}
