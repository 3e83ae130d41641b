// Package main provides the warming CLI: the dashboard server plus one-shot scenario, forecast,
// export and simulate commands.
package main

import (
	"fmt"
	"io"
	"os"

	warming "github.com/aouyang1/go-warming"
	"github.com/aouyang1/go-warming/internal/config"
	"github.com/spf13/cobra"
)

var (
	configPath string
	dataPath   string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "warming",
		Short: "Explore greenhouse gas scenarios and temperature anomaly forecasts",
		Long: `warming analyzes a yearly climate dataset of greenhouse gas concentrations and
temperature anomalies. It serves an interactive dashboard and runs scenario
regressions, forecasts and exports from the command line.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (env vars take precedence)")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset csv, overrides WARMING_DATA_PATH")

	rootCmd.AddCommand(
		newServeCmd(),
		newScenarioCmd(),
		newForecastCmd(),
		newExportCmd(),
		newSimulateCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		cfg.DataPath = dataPath
	}
	return cfg, nil
}

// analyzerOptions maps the service configuration onto the analyzer options
func analyzerOptions(cfg *config.Config) (*warming.Options, error) {
	order, err := cfg.Order()
	if err != nil {
		return nil, err
	}
	opt := warming.NewDefaultOptions()
	opt.ARIMAOptions.Order = order
	opt.Horizon = cfg.ForecastHorizon
	opt.PreviewRows = cfg.PreviewRows
	return opt, nil
}

func loadAnalyzer(cfg *config.Config) (*warming.Analyzer, error) {
	opt, err := analyzerOptions(cfg)
	if err != nil {
		return nil, err
	}
	a, err := warming.LoadAnalyzer(cfg.DataPath, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return a, nil
}

// openOutput opens path for writing, falling back to the command output when path is empty
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}
