package domain

// ShallowDepthKm is the cutoff below which an event counts as shallow.
const ShallowDepthKm = 2.5

// EII blend weights. The blend mixes unnormalized magnitudes with normalized
// ratios; the calibration is inherited from the SUPT continuum model and is
// not to be rescaled (see the package doc).
const (
	eiiWeightMdMax        = 0.20
	eiiWeightMdMean       = 0.15
	eiiWeightShallowRatio = 0.40
	eiiWeightPsiS         = 0.25
)

// ComputeMetrics derives the magnitude statistics, shallow-event ratio, and
// EII from an event set and the pressure proxy ψₛ. For an empty set all
// statistics are 0 by convention and EII reduces to clamp01(0.25·ψₛ).
// Deterministic and pure.
func ComputeMetrics(events EventSet, psiS float64) Metrics {
	var m Metrics
	if len(events) > 0 {
		shallow := 0
		sum := 0.0
		m.MdMax = events[0].Magnitude
		for _, e := range events {
			if e.Magnitude > m.MdMax {
				m.MdMax = e.Magnitude
			}
			sum += e.Magnitude
			if e.DepthKm < ShallowDepthKm {
				shallow++
			}
		}
		m.MdMean = sum / float64(len(events))
		m.ShallowRatio = float64(shallow) / float64(maxInt(len(events), 1))
	}

	m.EII = Clamp01(m.MdMax*eiiWeightMdMax +
		m.MdMean*eiiWeightMdMean +
		m.ShallowRatio*eiiWeightShallowRatio +
		psiS*eiiWeightPsiS)
	return m
}

// Clamp01 restricts x to [0, 1].
func Clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
