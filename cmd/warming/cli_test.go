package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// execute runs the root command with args against a fresh simulated dataset
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	data := filepath.Join(t.TempDir(), "observations.csv")

	_, _, err := run(t, "simulate", "--start", "1950", "--years", "60", "--seed", "3", "-o", data)
	require.Nil(t, err)

	return run(t, append([]string{"--data", data}, args...)...)
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()

	// flag variables are package level so reset them between runs
	configPath, dataPath, outputPath = "", "", ""
	forecastHTML = ""
	return stdout.String(), stderr.String(), err
}

func TestSimulateCmd(t *testing.T) {
	out, _, err := run(t, "simulate", "--start", "2000", "--years", "5", "--seed", "9")
	require.Nil(t, err)

	f, err := dataset.ReadCSV(strings.NewReader(out))
	require.Nil(t, err)
	assert.Equal(t, 5, f.Len())
	require.Nil(t, dataset.ValidateObservations(f))
}

func TestScenarioCmd(t *testing.T) {
	out, stderr, err := execute(t, "scenario", "--co2", "2.5", "--ch4", "-10")
	require.Nil(t, err)
	assert.True(t, strings.HasPrefix(stderr, "y ~ "))

	f, err := dataset.ReadCSV(strings.NewReader(out))
	require.Nil(t, err)
	assert.Equal(t, 60, f.Len())
	_, exists := f.Column(dataset.ColPredicted)
	assert.True(t, exists)
}

func TestForecastCmd(t *testing.T) {
	testData := map[string]struct {
		args []string
		rows int
		err  bool
	}{
		"arima":    {args: []string{"forecast", "--horizon", "4"}, rows: 4},
		"additive": {args: []string{"forecast", "--model", "additive", "--horizon", "6"}, rows: 6},
		"unknown":  {args: []string{"forecast", "--model", "holtwinters"}, err: true},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			out, _, err := execute(t, td.args...)
			if td.err {
				assert.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			f, err := dataset.ReadCSV(strings.NewReader(out))
			require.Nil(t, err)
			assert.Equal(t, td.rows, f.Len())
			assert.Equal(t, []string{"Year", "Forecast", "Lower", "Upper"}, f.Names())

			years, err := f.Floats("Year")
			require.Nil(t, err)
			assert.Equal(t, 2010.0, years[0])
		})
	}
}

func TestForecastCmdHTML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forecast.html")
	_, _, err := execute(t, "forecast", "--horizon", "5", "--html", path)
	require.Nil(t, err)

	page, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.Contains(t, string(page), "ARIMA Forecast")
	assert.Contains(t, string(page), "Additive Trend Forecast")
}

func TestExportCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	_, stderr, err := execute(t, "export", "--format", "xlsx", "-o", path)
	require.Nil(t, err)
	assert.Contains(t, stderr, path)

	wb, err := excelize.OpenFile(path)
	require.Nil(t, err)
	defer wb.Close()
	rows, err := wb.GetRows("GlobalWarmingData")
	require.Nil(t, err)
	assert.Len(t, rows, 61)
	assert.Equal(t, dataset.ColYear, rows[0][0])

	_, _, err = execute(t, "export", "--format", "pdf")
	assert.NotNil(t, err)
}

func TestServeCmdInvalidProfile(t *testing.T) {
	profileMode = "block"
	defer func() { profileMode = "" }()
	_, err := startProfile(profileMode)
	assert.NotNil(t, err)

	p, err := startProfile("")
	require.Nil(t, err)
	assert.Nil(t, p)
}
