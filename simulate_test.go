package warming

import (
	"testing"

	"github.com/aouyang1/go-warming/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateObservations(t *testing.T) {
	f, err := SimulateObservations(1900, 25, 1)
	require.Nil(t, err)
	require.Nil(t, dataset.ValidateObservations(f))
	assert.Equal(t, 25, f.Len())

	years, err := dataset.Years(f)
	require.Nil(t, err)
	assert.Equal(t, 1900, years[0])
	assert.Equal(t, 1924, years[24])

	again, err := SimulateObservations(1900, 25, 1)
	require.Nil(t, err)
	assert.Equal(t, f.Records(), again.Records())

	other, err := SimulateObservations(1900, 25, 2)
	require.Nil(t, err)
	assert.NotEqual(t, f.Records(), other.Records())
}
