package forecast

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const (
	DefaultAutoNumChangepoints = 25
	DefaultChangepointRange    = 0.8
	DefaultRegularization      = 0.05
	DefaultIterations          = 10000
	DefaultTolerance           = 1e-6
	DefaultIntervalWidth       = 0.8
)

var (
	ErrNegativeRegularization  = errors.New("negative regularization")
	ErrInvalidChangepointRange = errors.New("changepoint range must be in (0, 1]")
	ErrInvalidIntervalWidth    = errors.New("interval width must be in (0, 1)")
	ErrNegativeChangepoints    = errors.New("negative number of auto changepoints")
)

// ChangepointOptions configures the changepoint fit to either use auto-detection
// by evenly placing N changepoints in the first Range fraction of the training window or
// use the explicitly listed changepoints.
type ChangepointOptions struct {
	Changepoints        []Changepoint `json:"changepoints"`
	Auto                bool          `json:"auto"`
	AutoNumChangepoints int           `json:"auto_num_changepoints"`
	Range               float64       `json:"range"`
}

// NewDefaultChangepointOptions generates a set of default changepoint options
func NewDefaultChangepointOptions() ChangepointOptions {
	return ChangepointOptions{
		Auto:                true,
		AutoNumChangepoints: DefaultAutoNumChangepoints,
		Range:               DefaultChangepointRange,
	}
}

func (c ChangepointOptions) TablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	noCfg := " None"
	if len(c.Changepoints) > 0 {
		noCfg = ""
		if _, err := fmt.Fprintf(tbl, "%s%sName\tYear\t\n", prefix, strings.Repeat(indent, indentGrowth+1)); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "%s%sChangepoints:%s\n", prefix, strings.Repeat(indent, indentGrowth), noCfg); err != nil {
		return err
	}
	for _, chpt := range c.Changepoints {
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%d\t\n",
			prefix, strings.Repeat(indent, indentGrowth+1),
			chpt.Name, chpt.Year); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// Options configures the additive trend forecast
type Options struct {
	ChangepointOptions ChangepointOptions `json:"changepoint_options"`

	// Regularization is the L1 penalty applied to the growth and changepoint coefficients
	Regularization float64 `json:"regularization"`
	Iterations     int     `json:"iterations"`
	Tolerance      float64 `json:"tolerance"`

	// IntervalWidth is the probability mass covered by the upper and lower bounds
	IntervalWidth float64 `json:"interval_width"`
}

// NewDefaultOptions returns a set of default forecast options
func NewDefaultOptions() *Options {
	return &Options{
		ChangepointOptions: NewDefaultChangepointOptions(),
		Regularization:     DefaultRegularization,
		Iterations:         DefaultIterations,
		Tolerance:          DefaultTolerance,
		IntervalWidth:      DefaultIntervalWidth,
	}
}

// Validate fills in unset values with defaults and rejects invalid settings
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Regularization < 0 {
		return nil, ErrNegativeRegularization
	}
	if o.ChangepointOptions.AutoNumChangepoints < 0 {
		return nil, ErrNegativeChangepoints
	}
	if o.ChangepointOptions.Range == 0 {
		o.ChangepointOptions.Range = DefaultChangepointRange
	}
	if o.ChangepointOptions.Range < 0 || o.ChangepointOptions.Range > 1 {
		return nil, ErrInvalidChangepointRange
	}
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.IntervalWidth == 0 {
		o.IntervalWidth = DefaultIntervalWidth
	}
	if o.IntervalWidth <= 0 || o.IntervalWidth >= 1 {
		return nil, ErrInvalidIntervalWidth
	}
	return o, nil
}
