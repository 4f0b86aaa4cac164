package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/manifolded/graisse-prompt-versioning/pkg/graisse"
)

var (
	extractID  int64
	extractYes bool
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Write a master's fragments back to the working directory",
	Long: `Write each fragment of a master to its <NN>_<type> file, prefix in slot
order. Existing files are only overwritten after confirmation (or with -y).
Writes are atomic.`,
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer ws.Close()

		names, err := ws.Extract(cmd.Context(), extractID, extractYes)
		var conflict *graisse.ExtractConflictError
		if errors.As(err, &conflict) {
			fmt.Printf("Would overwrite: %v\n", conflict.Paths)
			if !confirm("Overwrite these files?") {
				fmt.Println("Aborted.")
				return
			}
			names, err = ws.Extract(cmd.Context(), extractID, true)
		}
		if err != nil {
			fatal("Extract failed", err)
		}

		for _, name := range names {
			fmt.Println("wrote", name)
		}
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().Int64Var(&extractID, "id", 0, "Master id (default: current)")
	extractCmd.Flags().BoolVarP(&extractYes, "yes", "y", false, "Overwrite existing files without asking")
}
