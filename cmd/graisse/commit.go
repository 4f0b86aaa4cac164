package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manifolded/graisse-prompt-versioning/pkg/graisse"
)

var (
	commitMsg      string
	commitBranches []string
)

// commitCmd represents the commit command
var commitCmd = &cobra.Command{
	Use:   "commit -m <message> [file...]",
	Short: "Commit the working directory as a new master",
	Long: `Reconcile the working directory against the current master. Without file
arguments every fragment file takes part and slots without a backing file
are dropped. Naming files makes a partial commit: only those slots change,
everything else is carried forward.

A branch directive "--branch <fragmentID>=<file>" versions the named file
as a branch of an existing fragment instead of incrementing its slot.`,
	Run: func(cmd *cobra.Command, args []string) {
		specs, err := parseBranchSpecs(commitBranches)
		if err != nil {
			fatal("Invalid --branch directive", err)
		}

		ws := openWorkspace(cmd)
		defer ws.Close()

		result, err := ws.Commit(cmd.Context(), graisse.CommitOptions{
			Message:  commitMsg,
			Paths:    args,
			Branches: specs,
		})
		if err != nil {
			fatal("Commit failed", err)
		}

		if result.NoOp {
			fmt.Println("Nothing to commit.")
			return
		}
		fmt.Printf("Committed master v%s (id %d), %d fragment(s), %d new\n",
			result.Master.Version, result.Master.ID, len(result.Fragments), len(result.Created))
	},
}

func parseBranchSpecs(raw []string) ([]graisse.BranchSpec, error) {
	specs := make([]graisse.BranchSpec, 0, len(raw))
	for _, s := range raw {
		id, path, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("%q is not of the form <fragmentID>=<file>", s)
		}
		parent, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad fragment id in %q: %w", s, err)
		}
		specs = append(specs, graisse.BranchSpec{ParentID: parent, Path: path})
	}
	return specs, nil
}

func init() {
	rootCmd.AddCommand(commitCmd)
	commitCmd.Flags().StringVarP(&commitMsg, "message", "m", "", "Commit message")
	commitCmd.Flags().StringArrayVar(&commitBranches, "branch", nil, "Branch directive <fragmentID>=<file> (repeatable)")
	commitCmd.MarkFlagRequired("message")
}
