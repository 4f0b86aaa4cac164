package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	graisseprompt "github.com/manifolded/graisse-prompt-versioning"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of graisse",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("graisse version %s\n", strings.TrimSpace(graisseprompt.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
