package warming

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-warming/arima"
	"github.com/aouyang1/go-warming/forecast"
)

var ErrInvalidPercentiles = errors.New("lower percentile must be less than upper percentile")

const (
	DefaultHorizon     = 50
	DefaultPreviewRows = 10
)

// OutlierOptions configures the passes that drop residual outliers before refitting the additive
// forecast
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes" yaml:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile" yaml:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile" yaml:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor" yaml:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Options configures an Analyzer
type Options struct {
	ForecastOptions *forecast.Options `json:"forecast_options"`
	ARIMAOptions    *arima.Options    `json:"arima_options"`

	// OutlierOptions is disabled when nil
	OutlierOptions *OutlierOptions `json:"outlier_options"`

	Horizon     int `json:"horizon"`
	PreviewRows int `json:"preview_rows"`
}

func NewDefaultOptions() *Options {
	return &Options{
		ForecastOptions: forecast.NewDefaultOptions(),
		ARIMAOptions:    arima.NewDefaultOptions(),
		Horizon:         DefaultHorizon,
		PreviewRows:     DefaultPreviewRows,
	}
}

// Validate fills in zero values with defaults and validates the nested model options
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	var err error
	if o.ForecastOptions, err = o.ForecastOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid forecast options, %w", err)
	}
	if o.ARIMAOptions, err = o.ARIMAOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid arima options, %w", err)
	}
	if o.OutlierOptions != nil && o.OutlierOptions.LowerPercentile >= o.OutlierOptions.UpperPercentile {
		return nil, ErrInvalidPercentiles
	}
	if o.Horizon <= 0 {
		o.Horizon = DefaultHorizon
	}
	if o.PreviewRows <= 0 {
		o.PreviewRows = DefaultPreviewRows
	}
	return o, nil
}
