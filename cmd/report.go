// ABOUTME: Report command for vcore-usage CLI
// ABOUTME: Selects organization and environments, aggregates vCores and renders the result

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/config"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/dump"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/render"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/progress"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/tui/selector"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/usage"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report vCore usage per environment or application",
	Long: `Authenticate with a connected app, pick an organization and one or more
environments, and sum vCores x replicas over every RUNNING deployment.

Examples:
  vcore-usage report
  vcore-usage report --region US --org Acme --env Prod --env Dev --detailed
  vcore-usage report --non-interactive --org Acme --all-envs -o json`,
	Run: runReportCommand,
}

func init() {
	addReportFlags(reportCmd.Flags())
	rootCmd.AddCommand(reportCmd)
}

// addReportFlags registers the selection flags on a report-capable command
func addReportFlags(f *pflag.FlagSet) {
	f.String("org", "", "Organization or business group name (or id)")
	f.StringSlice("env", nil, "Environment name, repeat or comma-separate for several")
	f.Bool("all-envs", false, "Report every environment of the organization")
	f.Bool("detailed", false, "List every running application")
	f.Int("workers", 1, "Concurrent allocation fetches per environment")
	f.Bool("no-progress", false, "Hide the progress bar")
	f.String("debug-file", dump.DefaultPath, "File receiving the last allocation response, empty disables it")
}

func runReportCommand(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tty := detectTerminal()
	opts := reportOptions{
		progress: tty.stderr && !cfg.NoProgress,
		style:    tableStyle(tty),
	}

	exitCode := runReport(ctx, cfg, newSelector(cfg, tty), os.Stdout, os.Stderr, opts)
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// reportOptions controls terminal decoration
type reportOptions struct {
	progress bool
	style    render.Style
}

func tableStyle(tty terminal) render.Style {
	if tty.stdout {
		return render.StyleColor
	}
	return render.StylePlain
}

// runReport executes the report flow and returns exit code
func runReport(ctx context.Context, c *config.Config, sel selector.Selector, w, errW io.Writer, opts reportOptions) int {
	report, err := buildReport(ctx, c, sel, errW, opts.progress)
	if err != nil {
		return printError(errW, err)
	}

	if err := render.Write(w, report, c.Output, opts.style); err != nil {
		return printError(errW, fmt.Errorf("failed to render report: %w", err))
	}
	return exitOK
}

// buildReport walks the selection flow and aggregates the chosen environments
func buildReport(ctx context.Context, c *config.Config, sel selector.Selector, errW io.Writer, showProgress bool) (*usage.Report, error) {
	s, err := connect(ctx, c, sel)
	if err != nil {
		return nil, err
	}

	org, err := s.organization(ctx, sel)
	if err != nil {
		return nil, err
	}

	envs, err := s.environments(ctx, org)
	if err != nil {
		return nil, err
	}

	names, err := sel.Environments(ctx, envs)
	if err != nil {
		return nil, err
	}
	selected := make([]client.NamedID, 0, len(names))
	for _, name := range names {
		id, ok := envs.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown environment %q", name)
		}
		selected = append(selected, client.NamedID{Name: name, ID: id})
	}

	detailed, err := sel.Detailed(ctx)
	if err != nil {
		return nil, err
	}

	var report *usage.Report
	work := func(ctx context.Context, reporter progress.Reporter) error {
		opts := []usage.Option{usage.WithWorkers(c.Workers)}
		if reporter != nil {
			opts = append(opts, usage.WithProgress(usage.ProgressFunc(reporter)))
		}
		built, err := usage.NewAggregator(s.api, opts...).Build(ctx, org, selected, detailed)
		report = built
		return err
	}

	if showProgress {
		err = progress.Run(ctx, errW, work)
	} else {
		err = work(ctx, nil)
	}
	if err != nil {
		return nil, err
	}

	report.Region = s.region
	return report, nil
}
