package domain

import "time"

// SeismicEvent is one catalog event after normalization. All three fields are
// required; rows that cannot produce all of them are dropped during
// normalization, never partially retained.
type SeismicEvent struct {
	Time      time.Time `json:"time"`
	Magnitude float64   `json:"magnitude"`
	DepthKm   float64   `json:"depth_km"`
}

// EventSet is an ordered sequence of events, most recent first. It is built
// fresh on every normalization call and not mutated afterward.
type EventSet []SeismicEvent

// Table is a raw tabular payload: named columns over rows of string cells.
// It is the common shape produced by the catalog adapters before
// normalization.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnHints optionally pins exact column names for the three required
// fields, bypassing alias resolution. Empty fields fall back to the default
// resolution order.
type ColumnHints struct {
	Time      string
	Magnitude string
	Depth     string
}

// Metrics holds the scalar statistics computed from an event set.
type Metrics struct {
	EII          float64 `json:"eii"`
	MdMax        float64 `json:"md_max"`
	MdMean       float64 `json:"md_mean"`
	ShallowRatio float64 `json:"shallow_ratio"`
}

// Phase is the RPAM classification band derived from EII.
type Phase string

const (
	PhaseActive     Phase = "ACTIVE"
	PhaseElevated   Phase = "ELEVATED"
	PhaseMonitoring Phase = "MONITORING"
)

// CoherenceLabel is the discrete band for the ψₛ–Depth coherence index.
type CoherenceLabel string

const (
	CoherenceCoherent  CoherenceLabel = "Coherent"
	CoherenceModerate  CoherenceLabel = "Moderate"
	CoherenceDecoupled CoherenceLabel = "Decoupled"
)

// GeomagLabel is the discrete band for the planetary K-index.
type GeomagLabel string

const (
	GeomagStorm    GeomagLabel = "Storm"
	GeomagModerate GeomagLabel = "Moderate"
	GeomagQuiet    GeomagLabel = "Quiet"
)

// Assessment is the Phase Classifier output.
type Assessment struct {
	Phase          Phase          `json:"rpam_phase"`
	CoherenceLabel CoherenceLabel `json:"coherence_label"`
	GeomagLabel    GeomagLabel    `json:"geomag_label"`
	DiagnosticText string         `json:"diagnostic_text"`
}

// Catalog and Kp source indicators recorded on a MetricBundle so the
// presentation layer can surface which inputs were degraded.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
	SourceNone     = "none"
)

// MetricBundle is the complete output of one evaluation cycle. It is
// recomputed from scratch on every refresh and immutable once produced.
type MetricBundle struct {
	Metrics
	CCI  float64 `json:"cci"`
	Kp   float64 `json:"kp"`
	PsiS float64 `json:"psi_s"`

	Phase          Phase          `json:"rpam_phase"`
	CoherenceLabel CoherenceLabel `json:"coherence_label"`
	GeomagLabel    GeomagLabel    `json:"geomag_label"`
	DiagnosticText string         `json:"diagnostic_text"`

	CatalogSource string   `json:"catalog_source"` // live, fallback, or none
	KpSource      string   `json:"kp_source"`      // live or fallback
	EventCount    int      `json:"event_count"`
	Notices       []string `json:"notices,omitempty"`

	EvaluatedAt time.Time `json:"evaluated_at"`
}
