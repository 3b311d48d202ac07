// ABOUTME: Orgs command for vcore-usage CLI
// ABOUTME: Lists the root organization and its business groups

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/config"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/render"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/selector"
	"github.com/spf13/cobra"
)

var orgsCmd = &cobra.Command{
	Use:   "orgs",
	Short: "List the organization and its business groups",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		tty := detectTerminal()
		exitCode := runOrgs(ctx, cfg, newSelector(cfg, tty), os.Stdout, os.Stderr, tableStyle(tty))
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(orgsCmd)
}

// runOrgs prints the business group hierarchy and returns exit code
func runOrgs(ctx context.Context, c *config.Config, sel selector.Selector, w, errW io.Writer, style render.Style) int {
	s, err := connect(ctx, c, sel)
	if err != nil {
		return printError(errW, err)
	}

	if err := render.List(w, "Organization", s.orgs.Entries(), c.Output, style); err != nil {
		return printError(errW, err)
	}
	return exitOK
}
