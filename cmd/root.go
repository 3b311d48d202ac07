// ABOUTME: Root command for vcore-usage CLI
// ABOUTME: Handles global flags, configuration loading and logger setup

package cmd

import (
	"os"
	"strings"

	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/client"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/config"
	"github.com/DarioLorenzoniMulesoft/vCoresUtilizationUtils/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var (
	cfgFile string
	verbose bool

	// cfg is loaded before any subcommand runs
	cfg *config.Config
)

// flagKeys maps flag names to config keys where they differ
var flagKeys = map[string]string{
	"env": "envs",
}

// rootCmd is the base command; without a subcommand it runs the report
var rootCmd = &cobra.Command{
	Use:   "vcore-usage",
	Short: "Report vCore usage of Anypoint deployments",
	Long: `vcore-usage reports how many vCores the applications of an Anypoint
organization consume, per environment or per application.

Values come from flags, VCORE_* environment variables, a .env file and
$XDG_CONFIG_HOME/vcore-usage/config.yaml, in that order of precedence.
Anything still missing is prompted for when running in a terminal.

Environment Variables:
  VCORE_CLIENT_ID      Connected app client id
  VCORE_CLIENT_SECRET  Connected app client secret
  VCORE_REGION         Control plane region (EU or US)`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
	Run:               runReportCommand,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/vcore-usage/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.String("region", "", "Control plane region: EU or US")
	pf.String("base-url", "", "Control plane URL (overrides --region)")
	pf.StringP("output", "o", config.OutputTable, "Output format: table, json or yaml")
	pf.String("client-id", "", "Connected app client id")
	pf.Bool("non-interactive", false, "Never prompt; fail when a value is missing")
	pf.Duration("timeout", client.DefaultTimeout, "HTTP timeout per request, 0 disables it")
	pf.String("proxy", "", "SOCKS5 jump host, e.g. ssh+socks5://user@host:22?private-key=/path")

	addReportFlags(rootCmd.Flags())
}

// loadConfig binds the running command's flags to viper and loads the config
func loadConfig(cmd *cobra.Command, args []string) error {
	v := config.NewViper()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	level := loaded.LogLevel
	if verbose {
		level = "debug"
	}
	logger.Init(level, loaded.LogFormat, os.Stderr)

	cfg = loaded
	return nil
}

// bindFlags exposes the command's flags to viper under their config keys.
// Unchanged flags fall below env, file and defaults in viper's lookup.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" || f.Name == "verbose" || f.Name == "help" {
			return
		}
		bindErr = v.BindPFlag(configKey(f.Name), f)
	})
	return bindErr
}

func configKey(flag string) string {
	if key, ok := flagKeys[flag]; ok {
		return key
	}
	return strings.ReplaceAll(flag, "-", "_")
}

// terminal records which standard streams are attached to a TTY
type terminal struct {
	stdin  bool
	stdout bool
	stderr bool
}

func detectTerminal() terminal {
	return terminal{
		stdin:  term.IsTerminal(int(os.Stdin.Fd())),
		stdout: term.IsTerminal(int(os.Stdout.Fd())),
		stderr: term.IsTerminal(int(os.Stderr.Fd())),
	}
}
