// cmd/nodelink/version.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tamzrod/nodelink/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "nodelink %s (built %s)\n", version.Version, version.BuildDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
