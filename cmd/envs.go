// ABOUTME: Envs command for vcore-usage CLI
// ABOUTME: Lists the environments of one organization or business group

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

var envsCmd = &cobra.Command{
	Use:   "envs",
	Short: "List the environments of an organization",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		tty := detectTerminal()
		exitCode := runEnvs(ctx, cfg, newSelector(cfg, tty), os.Stdout, os.Stderr, tableStyle(tty))
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	envsCmd.Flags().String("org", "", "Organization or business group name (or id)")
	rootCmd.AddCommand(envsCmd)
}

// runEnvs prints the environments of the selected organization and returns exit code
func runEnvs(ctx context.Context, c *config.Config, sel selector.Selector, w, errW io.Writer, style render.Style) int {
	s, err := connect(ctx, c, sel)
	if err != nil {
		return printError(errW, err)
	}

	org, err := s.organization(ctx, sel)
	if err != nil {
		return printError(errW, err)
	}

	envs, err := s.environments(ctx, org)
	if err != nil {
		return printError(errW, err)
	}

	if err := render.List(w, "Environment", envs.Entries(), c.Output, style); err != nil {
		return printError(errW, err)
	}
	return exitOK
}
