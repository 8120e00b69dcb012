package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func eventsWith(depths []float64, magnitudes []float64) EventSet {
	base := time.Date(2024, 4, 26, 12, 0, 0, 0, time.UTC)
	events := make(EventSet, len(depths))
	for i := range depths {
		events[i] = SeismicEvent{
			Time:      base.Add(-time.Duration(i) * time.Hour),
			Magnitude: magnitudes[i],
			DepthKm:   depths[i],
		}
	}
	return events
}

func TestComputeMetrics_Statistics(t *testing.T) {
	events := eventsWith(
		[]float64{1.0, 3.0, 2.0, 2.49},
		[]float64{0.5, 2.0, 1.0, 0.5},
	)

	m := ComputeMetrics(events, 0.0)

	assert.Equal(t, 2.0, m.MdMax)
	assert.Equal(t, 1.0, m.MdMean)
	assert.Equal(t, 0.75, m.ShallowRatio, "depths 1.0, 2.0 and 2.49 are below the 2.5 km cutoff")
	assert.InDelta(t, Clamp01(2.0*0.20+1.0*0.15+0.75*0.40), m.EII, 1e-12)
}

func TestComputeMetrics_EmptySetConventions(t *testing.T) {
	m := ComputeMetrics(nil, 0.72)

	assert.Zero(t, m.MdMax)
	assert.Zero(t, m.MdMean)
	assert.Zero(t, m.ShallowRatio)
	assert.InDelta(t, 0.72*0.25, m.EII, 1e-12)
}

func TestComputeMetrics_ShallowRatioBounds(t *testing.T) {
	tests := []struct {
		name     string
		depths   []float64
		expected float64
	}{
		{"all shallow", []float64{0.1, 1.0, 2.4}, 1.0},
		{"none shallow", []float64{2.5, 3.0, 10.0}, 0.0},
		{"boundary depth is not shallow", []float64{2.5}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mags := make([]float64, len(tt.depths))
			m := ComputeMetrics(eventsWith(tt.depths, mags), 0)
			assert.Equal(t, tt.expected, m.ShallowRatio)
			assert.GreaterOrEqual(t, m.ShallowRatio, 0.0)
			assert.LessOrEqual(t, m.ShallowRatio, 1.0)
		})
	}
}

func TestComputeMetrics_EIIAlwaysClamped(t *testing.T) {
	tests := []struct {
		name string
		mags []float64
		psiS float64
	}{
		{"huge magnitudes", []float64{9.5, 8.0}, 1.0},
		{"negative psi", []float64{0.1}, -50},
		{"huge psi", []float64{0.1}, 1e9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			depths := make([]float64, len(tt.mags))
			m := ComputeMetrics(eventsWith(depths, tt.mags), tt.psiS)
			assert.GreaterOrEqual(t, m.EII, 0.0)
			assert.LessOrEqual(t, m.EII, 1.0)
			assert.False(t, math.IsNaN(m.EII))
		})
	}
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-0.5))
	assert.Equal(t, 0.0, Clamp01(0))
	assert.Equal(t, 0.42, Clamp01(0.42))
	assert.Equal(t, 1.0, Clamp01(1))
	assert.Equal(t, 1.0, Clamp01(17.3))
}
