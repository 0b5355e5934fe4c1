// Package cmd implements the pumpsim CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/timzifer/halcore/config"
	"github.com/timzifer/halcore/internal/logging"
)

var (
	// Version is set at build time
	Version = "0.1.0"

	// Global flags
	configPath   string
	outputFormat string

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pumpsim",
	Short: "Host simulator for buffered device channels",
	Long: `pumpsim runs the channel buffers and retry pumps on a host.

It can relay stdin to a rate-limited stdout the way a board drains a log
buffer into its UART, and replay single pump runs against scripted sinks.`,
	Version:      Version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.NewLoader().
			WithConfigPath(configPath).
			WithValidator((*config.Config).Validate).
			Load()
		if err != nil {
			return err
		}

		logger, err = logging.New(cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialise logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file (HALCORE_* environment variables override it)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table, yaml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func outputYAML(data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	_, err = os.Stdout.Write(out)
	return err
}
