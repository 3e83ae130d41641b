package warming

import (
	"bytes"
	"testing"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/aouyang1/go-warming/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG")

func TestHistogramPNG(t *testing.T) {
	testData := map[string]struct {
		vals []float64
		bins int
	}{
		"spread":    {vals: []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}, bins: stats.MinBins},
		"all equal": {vals: []float64{2, 2, 2}, bins: stats.DefaultBins},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			h, err := stats.NewHistogram(td.vals, td.bins)
			require.Nil(t, err)

			var buf bytes.Buffer
			require.Nil(t, HistogramPNG(&buf, "Histogram", h))
			assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
		})
	}
}

func TestScatterPNG(t *testing.T) {
	f := simulated(t)

	var buf bytes.Buffer
	require.Nil(t, ScatterPNG(&buf, "CO2 vs Temperature Anomaly", f, dataset.ColCO2, dataset.ColAnomaly))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	empty, err := dataset.NewFrame(
		dataset.NewFloatColumn("x", []float64{}),
		dataset.NewFloatColumn("y", []float64{}),
	)
	require.Nil(t, err)
	assert.ErrorIs(t, ScatterPNG(&buf, "empty", empty, "x", "y"), stats.ErrNoData)
	assert.ErrorIs(t, ScatterPNG(&buf, "missing", f, "x", dataset.ColAnomaly), dataset.ErrColumnNotFound)
}
