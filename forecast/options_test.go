package forecast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *Options
		expected *Options
		err      error
	}{
		"nil": {
			expected: NewDefaultOptions(),
		},
		"fills defaults": {
			opt: &Options{},
			expected: &Options{
				ChangepointOptions: ChangepointOptions{Range: DefaultChangepointRange},
				Iterations:         DefaultIterations,
				Tolerance:          DefaultTolerance,
				IntervalWidth:      DefaultIntervalWidth,
			},
		},
		"negative regularization": {
			opt: &Options{Regularization: -1},
			err: ErrNegativeRegularization,
		},
		"negative changepoints": {
			opt: &Options{ChangepointOptions: ChangepointOptions{AutoNumChangepoints: -1}},
			err: ErrNegativeChangepoints,
		},
		"range too large": {
			opt: &Options{ChangepointOptions: ChangepointOptions{Range: 1.5}},
			err: ErrInvalidChangepointRange,
		},
		"interval too wide": {
			opt: &Options{IntervalWidth: 1.0},
			err: ErrInvalidIntervalWidth,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res, err := td.opt.Validate()
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, res)
		})
	}
}
