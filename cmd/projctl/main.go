// Package main implements projctl, a CLI for research project identifiers,
// the user registry behind them and the tracking services they are
// published to.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/projctl/internal/config"
	"github.com/fyrsmithlabs/projctl/internal/logging"
	"github.com/fyrsmithlabs/projctl/internal/registry"
)

var (
	// persistent flags
	cfgFile      string
	registryPath string
	logLevel     string
	logFormat    string
	logFile      string

	// version information
	version = "dev"

	// set up by PersistentPreRunE
	appConfig *config.Config
	appLogger *logging.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "projctl",
	Short: "Manage research project IDs and the users they belong to",
	Long: `projctl creates and validates project identifiers of the form
P<year>-<user id>-<suffix>, keeps the registry that maps people to user IDs,
publishes new projects to Toggl Track, Asana and Notion, and reports the
hours tracked against them.

Configuration is read from ~/.config/projctl/config.yaml and PROJCTL_*
environment variables, e.g. PROJCTL_TOGGL_API_TOKEN.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if appLogger != nil {
			_ = appLogger.Close()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ~/.config/projctl/config.yaml)")
	pf.StringVar(&registryPath, "registry", "", "user registry file, .json or .toml (overrides config)")
	pf.StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "log format: console or json")
	pf.StringVar(&logFile, "log-file", "", "also write JSON logs to this file")
}

// setup loads configuration, applies flag overrides and installs the
// logger on the command context.
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if registryPath != "" {
		cfg.Registry.Path = registryPath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if logFile != "" {
		cfg.Logging.File = logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	appConfig = cfg
	appLogger = logger

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithCommand(ctx, cmd.CommandPath())
	ctx = logging.WithLogger(ctx, logger)
	cmd.SetContext(ctx)

	logger.Debug(ctx, "config loaded",
		zap.String("registry", cfg.Registry.Path),
		zap.Bool("toggl", cfg.Toggl.Enabled()),
		zap.Bool("asana", cfg.Asana.Enabled()),
		zap.Bool("notion", cfg.Notion.Enabled()))
	return nil
}

func newLogger(lc config.LoggingConfig) (*logging.Logger, error) {
	lcfg := logging.NewDefaultConfig()
	level, err := logging.LevelFromString(lc.Level)
	if err != nil {
		return nil, err
	}
	lcfg.Level = level
	lcfg.Format = lc.Format
	lcfg.Output.File = lc.File
	return logging.NewLogger(lcfg)
}

func openRegistry() (*registry.Registry, error) {
	return registry.NewRegistry(appConfig.Registry.Path)
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	printfTo(cmd.OutOrStdout(), format, args...)
}

func printfTo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}
