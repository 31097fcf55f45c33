package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/aidbuddy"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of aidbuddy",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "aidbuddy version %s\n", strings.TrimSpace(aidbuddy.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
