package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var uncommitYes bool

// uncommitCmd represents the uncommit command
var uncommitCmd = &cobra.Command{
	Use:   "uncommit",
	Short: "Revert to the previous master",
	Long: `Delete the current master and make its parent current again. Fragments
introduced by the reverted commit are removed unless an older master still
needs them. The store ends up byte-identical to its state before the
reverted commit.`,
	Run: func(cmd *cobra.Command, args []string) {
		ws := openWorkspace(cmd)
		defer ws.Close()

		if !uncommitYes && !confirm("Revert to the previous master? This deletes the current one") {
			fmt.Println("Aborted.")
			return
		}

		result, err := ws.Uncommit(cmd.Context())
		if err != nil {
			fatal("Uncommit failed", err)
		}

		fmt.Printf("Reverted master v%s (id %d); current is now v%s (id %d)\n",
			result.Reverted.Version, result.Reverted.ID,
			result.Current.Version, result.Current.ID)
		if len(result.DeletedIDs) > 0 {
			fmt.Printf("Removed %d fragment(s) no newer master needed\n", len(result.DeletedIDs))
		}
	},
}

func init() {
	rootCmd.AddCommand(uncommitCmd)
	uncommitCmd.Flags().BoolVarP(&uncommitYes, "yes", "y", false, "Skip the confirmation prompt")
}
