package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aouyang1/go-warming/arima"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "fully_cleaned_global_warming_sim_dataset.csv", cfg.DataPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 50, cfg.ForecastHorizon)
	assert.Equal(t, "(2,1,2)", cfg.ARIMAOrder)
	assert.Equal(t, 10, cfg.PreviewRows)
	assert.Equal(t, 30*time.Minute, cfg.UploadTTL)
	assert.Equal(t, 32, cfg.UploadCapacity)
	assert.Equal(t, int64(10485760), cfg.MaxUploadBytes)

	order, err := cfg.Order()
	require.NoError(t, err)
	assert.Equal(t, arima.DefaultOrder, order)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("WARMING_HTTP_ADDR", ":9090")
	t.Setenv("WARMING_DATA_PATH", "/data/warming.csv")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("WARMING_SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("WARMING_FORECAST_HORIZON", "25")
	t.Setenv("WARMING_ARIMA_ORDER", "1,1,0")
	t.Setenv("WARMING_PREVIEW_ROWS", "5")
	t.Setenv("WARMING_UPLOAD_TTL", "5m")
	t.Setenv("WARMING_UPLOAD_CAPACITY", "4")
	t.Setenv("WARMING_MAX_UPLOAD_BYTES", "1024")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "/data/warming.csv", cfg.DataPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 25, cfg.ForecastHorizon)
	assert.Equal(t, 5, cfg.PreviewRows)
	assert.Equal(t, 5*time.Minute, cfg.UploadTTL)
	assert.Equal(t, 4, cfg.UploadCapacity)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)

	order, err := cfg.Order()
	require.NoError(t, err)
	assert.Equal(t, arima.Order{P: 1, D: 1, Q: 0}, order)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "warming.yaml")
	content := "http_addr: \":7070\"\nforecast_horizon: 20\nupload_ttl: 1m\narima_order: \"0,1,1\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 20, cfg.ForecastHorizon)
	assert.Equal(t, time.Minute, cfg.UploadTTL)
	assert.Equal(t, "0,1,1", cfg.ARIMAOrder)
	// unset keys keep their defaults
	assert.Equal(t, 32, cfg.UploadCapacity)

	// environment wins over the file
	t.Setenv("WARMING_FORECAST_HORIZON", "7")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.ForecastHorizon)
}

func TestLoad_FileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http_addr: [unterminated"), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	testData := map[string]struct {
		key   string
		value string
	}{
		"log level":        {key: "LOG_LEVEL", value: "verbose"},
		"log format":       {key: "LOG_FORMAT", value: "xml"},
		"shutdown timeout": {key: "WARMING_SHUTDOWN_TIMEOUT", value: "soon"},
		"negative timeout": {key: "WARMING_SHUTDOWN_TIMEOUT", value: "-1s"},
		"horizon":          {key: "WARMING_FORECAST_HORIZON", value: "abc"},
		"zero horizon":     {key: "WARMING_FORECAST_HORIZON", value: "0"},
		"arima order":      {key: "WARMING_ARIMA_ORDER", value: "2,1"},
		"upload ttl":       {key: "WARMING_UPLOAD_TTL", value: "0s"},
		"upload capacity":  {key: "WARMING_UPLOAD_CAPACITY", value: "-2"},
		"max upload":       {key: "WARMING_MAX_UPLOAD_BYTES", value: "lots"},
		"preview rows":     {key: "WARMING_PREVIEW_ROWS", value: "0"},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			t.Setenv(td.key, td.value)
			_, err := Load("")
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
