package monitor

import "math"

// DefaultForecastHours is the horizon of the synthetic ψₛ projection.
const DefaultForecastHours = 48

// forecastAmplitude scales the harmonic wave around the current ψₛ. Not a
// predictive model: the projection is a fixed sinusoid over one full period,
// rendered as auxiliary chart data only.
const forecastAmplitude = 0.3

// ForecastPoint is one hour of the synthetic ψₛ projection.
type ForecastPoint struct {
	Hour int     `json:"hour"`
	Psi  float64 `json:"psi"`
}

// ForecastWave returns the synthetic ψₛ projection for the given horizon:
// one sine period spanning the horizon, amplitude 0.3, offset by the current
// ψₛ. Deterministic and pure.
func ForecastWave(psiS float64, hours int) []ForecastPoint {
	if hours <= 0 {
		hours = DefaultForecastHours
	}
	points := make([]ForecastPoint, hours)
	if hours == 1 {
		points[0] = ForecastPoint{Hour: 0, Psi: psiS}
		return points
	}
	for i := range points {
		phase := 2 * math.Pi * float64(i) / float64(hours-1)
		points[i] = ForecastPoint{
			Hour: i,
			Psi:  math.Sin(phase)*forecastAmplitude + psiS,
		}
	}
	return points
}
