package domain

import (
	"math"
	"math/rand"
	"time"
)

const (
	// DefaultCoherenceSamples is the length both signals are resampled to.
	DefaultCoherenceSamples = 24

	// psiHistoryStdDev is the noise width of the synthetic ψₛ history.
	psiHistoryStdDev = 0.05

	// depthSmoothingWindow is the moving-average window over the depth sequence.
	depthSmoothingWindow = 3

	// depthClampMaxKm bounds the smoothed depth signal before resampling.
	depthClampMaxKm = 5.0
)

// PsiSample is one point of the synthetic ψₛ history, timestamped for
// charting.
type PsiSample struct {
	Time time.Time `json:"time"`
	Psi  float64   `json:"psi"`
}

// ComputeCoherence returns the CCI: the squared Pearson correlation between a
// synthetic ψₛ history centered on psiS and a smoothed, range-clamped depth
// signal resampled to sampleSize points. The rng parameter makes the noise
// source explicit; tests pass a seeded source for determinism. Returns 0 when
// the event set has fewer than 2 points or either signal has zero variance,
// and is always clamped to [0, 1] before being exposed.
func ComputeCoherence(events EventSet, psiS float64, sampleSize int, rng *rand.Rand) float64 {
	if sampleSize <= 1 {
		sampleSize = DefaultCoherenceSamples
	}
	if len(events) < 2 {
		return 0
	}

	depths := make([]float64, len(events))
	for i, e := range events {
		depths[i] = e.DepthKm
	}
	smoothed := movingAverage(depths, depthSmoothingWindow)
	for i, v := range smoothed {
		smoothed[i] = math.Min(math.Max(v, 0), depthClampMaxKm)
	}
	depthSignal := resample(smoothed, sampleSize)

	psiSignal := make([]float64, sampleSize)
	for i := range psiSignal {
		psiSignal[i] = rng.NormFloat64()*psiHistoryStdDev + psiS
	}

	dz, ok := zNormalize(depthSignal)
	if !ok {
		return 0
	}
	pz, ok := zNormalize(psiSignal)
	if !ok {
		return 0
	}

	r := 0.0
	for i := range dz {
		r += dz[i] * pz[i]
	}
	r /= float64(len(dz))

	// With degenerate inputs the raw product sum can drift past ±1
	// numerically, so the square is clamped before exposure.
	return Clamp01(r * r)
}

// PsiHistory builds the timestamped synthetic ψₛ history rendered by the
// dashboard: n hourly samples ending at the current clock time, oldest first.
func PsiHistory(psiS float64, n int, rng *rand.Rand) []PsiSample {
	if n <= 0 {
		n = DefaultCoherenceSamples
	}
	now := clock.Now().UTC()
	history := make([]PsiSample, n)
	for i := range history {
		history[i] = PsiSample{
			Time: now.Add(-time.Duration(n-1-i) * time.Hour),
			Psi:  rng.NormFloat64()*psiHistoryStdDev + psiS,
		}
	}
	return history
}

// movingAverage smooths values with a trailing window, averaging whatever
// part of the window is available at the start of the series.
func movingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		lo := i - window + 1
		if lo < 0 {
			lo = 0
		}
		sum := 0.0
		for j := lo; j <= i; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(i-lo+1)
	}
	return out
}

// resample maps values onto n evenly spaced points by linear interpolation.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		if hi >= len(values) {
			hi = len(values) - 1
		}
		frac := pos - float64(lo)
		out[i] = values[lo]*(1-frac) + values[hi]*frac
	}
	return out
}

// zNormalize subtracts the mean and divides by the population standard
// deviation. Returns false for series shorter than 2 points or with zero
// variance, where the correlation would be undefined.
func zNormalize(values []float64) ([]float64, bool) {
	if len(values) < 2 {
		return nil, false
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	if variance == 0 {
		return nil, false
	}

	std := math.Sqrt(variance)
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out, true
}
