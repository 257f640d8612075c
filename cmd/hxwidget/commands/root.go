// Package commands provides the CLI commands for hxwidget.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/hxwidget/lib/config"
	"github.com/pthm/hxwidget/lib/logging"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	configPath string
	envFile    string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "hxwidget",
	Short: "hxwidget - jQuery widgets driven by Go handlers over htmx",
	Long: `hxwidget serves a fullCalendar agenda and jQuery UI drag and drop
widgets whose callbacks are answered by Go code through htmx.

Run 'hxwidget serve' to start the demo server, or 'hxwidget script'
to print the client code generated for its widgets.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.SilenceUsage = true

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "hxwidget.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "Optional .env file with HXWIDGET_* overrides")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG|INFO|WARN|ERROR), overrides the config")

	rootCmd.SetVersionTemplate(fmt.Sprintf("hxwidget %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(scriptCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads the config file, applies the environment and the
// --log-level flag, and initializes the global logger from the result.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(envFile); err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	return cfg, nil
}
