package main

import (
	"fmt"
	"os"

	"github.com/caelisco/plenoptiform/config"
	"github.com/caelisco/plenoptiform/form"
	"github.com/caelisco/plenoptiform/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "plenoptiform",
	Short: "Submit light field parameters to the plenoptisign endpoint",
	Long: `plenoptiform sends the ten plenoptic camera parameters of the plenoptisign
form to its CGI endpoint and shows the returned result.

Values come from the config file, from flags, or from the form of an HTML page.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
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
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(submitCmd, queryCmd, serveDemoCmd)
}

// loadConfig returns the config file when given, the defaults otherwise.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return nil, err
		}
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// addFieldFlags registers one flag per form field.
func addFieldFlags(cmd *cobra.Command) {
	defaults := form.Defaults()
	for _, k := range form.Keys {
		cmd.Flags().String(k, "", fmt.Sprintf("value of field %s (default %s)", k, defaults[k]))
	}
}

// fieldOverrides returns the field flags that were set on the command line.
func fieldOverrides(cmd *cobra.Command) map[string]string {
	overrides := map[string]string{}
	for _, k := range form.Keys {
		if cmd.Flags().Changed(k) {
			v, _ := cmd.Flags().GetString(k)
			overrides[k] = v
		}
	}
	return overrides
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
