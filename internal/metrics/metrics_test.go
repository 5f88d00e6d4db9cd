package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gaugeValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestKennelOccupancy_SeededThenMoved(t *testing.T) {
	Init("")

	SetKennelsOccupied(3)
	KennelOccupied(-1)
	KennelOccupied(-1)
	KennelOccupied(1)

	assert.Equal(t, 2.0, gaugeValue(t, DefaultNamespace+"_kennels_occupied"))
}
