package main

import (
	"fmt"
	"os"

	warming "github.com/aouyang1/go-warming"
	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/export"
	"github.com/aouyang1/go-warming/scenario"
	"github.com/spf13/cobra"
)

var (
	offsets    scenario.Offsets
	outputPath string

	forecastModel   string
	forecastHorizon int
	forecastHTML    string

	exportFormat string

	simStart int
	simYears int
	simSeed  uint64
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario",
		Short: "Shift gas concentrations and print the refit anomaly predictions as csv",
		Args:  cobra.NoArgs,
		RunE:  runScenario,
	}
	cmd.Flags().Float64Var(&offsets.CO2, "co2", 0, "CO2 change (ppm)")
	cmd.Flags().Float64Var(&offsets.CH4, "ch4", 0, "CH4 change (ppb)")
	cmd.Flags().Float64Var(&offsets.N2O, "n2o", 0, "N2O change (ppb)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output csv path (default: stdout)")
	return cmd
}

func runScenario(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := loadAnalyzer(cfg)
	if err != nil {
		return err
	}
	res, err := a.Scenario(offsets)
	if err != nil {
		return fmt.Errorf("scenario failed: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s (R² %.4f)\n", res.Model.ModelEq(), res.Model.R2)

	w, closeFn, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(w, res.Frame); err != nil {
		closeFn() //nolint:errcheck // already failing
		return fmt.Errorf("failed to write scenario: %w", err)
	}
	return closeFn()
}

func newForecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast the temperature anomaly past the last observed year",
		Long: `Fit an ARIMA or additive trend model to the temperature anomaly and print the
forecast with its uncertainty band as csv. With --html both models are plotted
to a standalone chart page instead.`,
		Args: cobra.NoArgs,
		RunE: runForecast,
	}
	cmd.Flags().StringVar(&forecastModel, "model", string(warming.ModelARIMA), "forecast model: arima or additive")
	cmd.Flags().IntVar(&forecastHorizon, "horizon", 0, "years to forecast (default: WARMING_FORECAST_HORIZON)")
	cmd.Flags().StringVar(&forecastHTML, "html", "", "write an html chart page of both models to this path")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output csv path (default: stdout)")
	return cmd
}

func runForecast(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := loadAnalyzer(cfg)
	if err != nil {
		return err
	}

	if forecastHTML != "" {
		f, err := os.Create(forecastHTML)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", forecastHTML, err)
		}
		if err := a.PlotForecast(f, forecastHorizon); err != nil {
			f.Close() //nolint:errcheck // already failing
			return fmt.Errorf("failed to plot forecast: %w", err)
		}
		return f.Close()
	}

	kind, err := warming.ParseModelKind(forecastModel)
	if err != nil {
		return err
	}
	res, err := a.Forecast(kind, forecastHorizon)
	if err != nil {
		return fmt.Errorf("forecast failed: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), res.Equation)

	years := make([]float64, len(res.Years))
	for i, y := range res.Years {
		years[i] = float64(y)
	}
	frame, err := dataset.NewFrame(
		dataset.NewFloatColumn(dataset.ColYear, years),
		dataset.NewFloatColumn("Forecast", res.Forecast),
		dataset.NewFloatColumn("Lower", res.Lower),
		dataset.NewFloatColumn("Upper", res.Upper),
	)
	if err != nil {
		return err
	}

	w, closeFn, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(w, frame); err != nil {
		closeFn() //nolint:errcheck // already failing
		return fmt.Errorf("failed to write forecast: %w", err)
	}
	return closeFn()
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the dataset as csv, csv.gz, xlsx or parquet",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}
	cmd.Flags().StringVar(&exportFormat, "format", string(export.FormatCSV), "csv, csv.gz, xlsx or parquet")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path (default: global_warming_analysis.<format>)")
	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(exportFormat)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := loadAnalyzer(cfg)
	if err != nil {
		return err
	}

	path := outputPath
	if path == "" {
		path = format.FileName()
	}
	w, closeFn, err := openOutput(cmd, path)
	if err != nil {
		return err
	}
	if err := a.Export(w, format); err != nil {
		closeFn() //nolint:errcheck // already failing
		return fmt.Errorf("export failed: %w", err)
	}
	if err := closeFn(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
	return nil
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate a synthetic observation table as csv",
		Args:  cobra.NoArgs,
		RunE:  runSimulate,
	}
	cmd.Flags().IntVar(&simStart, "start", 1900, "first year")
	cmd.Flags().IntVar(&simYears, "years", 124, "number of yearly records")
	cmd.Flags().Uint64Var(&simSeed, "seed", 1, "random seed")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output csv path (default: stdout)")
	return cmd
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	f, err := warming.SimulateObservations(simStart, simYears, simSeed)
	if err != nil {
		return err
	}
	w, closeFn, err := openOutput(cmd, outputPath)
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(w, f); err != nil {
		closeFn() //nolint:errcheck // already failing
		return fmt.Errorf("failed to write simulation: %w", err)
	}
	return closeFn()
}
