// Package domain models seismic catalog data and the SUPT indicator pipeline.
//
// # Data Sources
//
// Seismic events come from the INGV (Istituto Nazionale di Geofisica e
// Vulcanologia) FDSN event web service, queried as delimited text for a
// bounding box and time window. When the live service is unreachable, the
// monitor falls back to a local CSV export of the same catalog. The
// geomagnetic planetary K-index (Kp) comes from the NOAA SWPC product feed.
//
// # Catalog Conventions
//
// Column names vary between the FDSN text payload and local CSV exports:
//
//	time:      "Time", "Time UTC", or the canonical "time"
//	magnitude: "Magnitude", "MD" (duration magnitude), "Mag", or "magnitude"
//	depth:     "Depth", "Depth/Km", or the canonical "depth_km"
//
// [Normalize] resolves these by exact canonical name first, then by
// case-insensitive alias substring. Magnitude cells in hand-edited exports
// sometimes carry free-form annotations with an uncertainty marker, e.g.
// "Md 0.5±0.3"; the first numeric token is taken as the magnitude. Rows that
// fail to yield a valid time, magnitude, and non-negative depth are dropped
// whole. The normalized set is ordered most recent first.
//
// # SUPT Indicators
//
// The pipeline derives three indicators from a normalized event set, the
// current Kp, and the operator-supplied solar pressure proxy ψₛ in [0, 1]:
//
//	EII  Energetic Instability Index: a weighted blend of maximum magnitude,
//	     mean magnitude, the shallow-event ratio (depth < 2.5 km), and ψₛ,
//	     clamped to [0, 1]. The blend intentionally mixes unnormalized
//	     magnitudes with normalized ratios; the calibration is inherited from
//	     the SUPT continuum model and must not be rescaled here.
//	CCI  ψₛ–Depth Coherence Index: the squared Pearson correlation between a
//	     synthetic ψₛ history and a smoothed, resampled depth signal. The
//	     noise source is injected so callers control determinism.
//	RPAM The discrete phase classification derived from EII, together with
//	     coherence and geomagnetic status labels and a diagnostic narrative.
//
// Degenerate inputs (empty event set, zero-variance signals) resolve to
// defined zero values, never NaN.
package domain
