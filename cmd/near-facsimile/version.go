package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of near-facsimile",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "near-facsimile %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
