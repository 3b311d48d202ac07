// ABOUTME: Version command for vcore-usage CLI
// ABOUTME: Prints the build version injected at link time

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X .../cmd.version=v1.2.3"
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	// version needs no configuration
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "vcore-usage %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
