package domain

import "fmt"

// Classification band cutoffs. Each band is inclusive on its lower bound.
const (
	RPAMActiveCutoff   = 0.85
	RPAMElevatedCutoff = 0.60

	CoherenceCoherentCutoff = 0.7
	CoherenceModerateCutoff = 0.4

	GeomagStormCutoff    = 5.0
	GeomagModerateCutoff = 3.0
)

// Fixed narrative strings, one per band, combined positionally into the
// diagnostic text. Inherited verbatim from the SUPT continuum model.
var (
	phaseTitles = map[Phase]string{
		PhaseActive:     "Collapse Window Initiated",
		PhaseElevated:   "Pressure Coupling Phase",
		PhaseMonitoring: "Stable",
	}
	phaseMessages = map[Phase]string{
		PhaseActive:     "System energetically saturated. Collapse-phase resonance possible; high internal coupling efficiency.",
		PhaseElevated:   "System in harmonic tension buildup. Energy transfer active; monitoring phase coherence recommended.",
		PhaseMonitoring: "System stable; no significant external coupling.",
	}
	coherenceNotes = map[CoherenceLabel]string{
		CoherenceCoherent:  "Psi-Depth phases are synchronized; resonance feedback likely.",
		CoherenceModerate:  "Partial coherence detected; energy exchange possible but weak.",
		CoherenceDecoupled: "Psi-Depth phases misaligned; system energetically loaded but incoherent.",
	}
	geomagStates = map[GeomagLabel]string{
		GeomagStorm:    "Geomagnetic storm active: potential resonance amplifier.",
		GeomagModerate: "Moderate geomagnetic activity: mild forcing potential.",
		GeomagQuiet:    "Quiet geomagnetic conditions.",
	}
)

// Classify maps the instability index, coherence index, and planetary
// K-index to their discrete bands and the combined diagnostic narrative.
// Conditions are evaluated highest threshold first so exactly one band
// matches per input. Pure, deterministic, no I/O.
func Classify(eii, cci, kp float64) Assessment {
	a := Assessment{
		Phase:          classifyPhase(eii),
		CoherenceLabel: classifyCoherence(cci),
		GeomagLabel:    classifyGeomag(kp),
	}
	a.DiagnosticText = diagnosticText(a, eii, cci, kp)
	return a
}

func classifyPhase(eii float64) Phase {
	switch {
	case eii >= RPAMActiveCutoff:
		return PhaseActive
	case eii >= RPAMElevatedCutoff:
		return PhaseElevated
	default:
		return PhaseMonitoring
	}
}

func classifyCoherence(cci float64) CoherenceLabel {
	switch {
	case cci >= CoherenceCoherentCutoff:
		return CoherenceCoherent
	case cci >= CoherenceModerateCutoff:
		return CoherenceModerate
	default:
		return CoherenceDecoupled
	}
}

func classifyGeomag(kp float64) GeomagLabel {
	switch {
	case kp >= GeomagStormCutoff:
		return GeomagStorm
	case kp >= GeomagModerateCutoff:
		return GeomagModerate
	default:
		return GeomagQuiet
	}
}

// diagnosticText renders the deterministic summary template combining the
// three band labels with their narrative strings.
func diagnosticText(a Assessment, eii, cci, kp float64) string {
	return fmt.Sprintf(
		"RPAM Phase: %s (%s)\nEII: %.3f | CCI: %.3f (%s) | Kp: %.1f (%s)\n\n%s %s %s",
		a.Phase, phaseTitles[a.Phase],
		eii, cci, a.CoherenceLabel, kp, a.GeomagLabel,
		phaseMessages[a.Phase],
		coherenceNotes[a.CoherenceLabel],
		geomagStates[a.GeomagLabel],
	)
}
