// Command validate performs integrity checks on a local fallback catalog
// before it is deployed next to the monitor. It verifies that the file reads,
// that its columns resolve through the schema aliases, that rows survive
// normalization, and that the resulting indicators are well formed.
//
// Usage:
//
//	go run ./cmd/validate -catalog events.csv
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/sunwolf-labs/supt-monitor/internal/adapter/localfile"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	catalogPath := flag.String("catalog", "", "path to the local catalog CSV")
	psiS := flag.Float64("psi", 0.72, "pressure proxy used for the indicator checks")
	maxDropRatio := flag.Float64("max-drop-ratio", 0.5, "maximum tolerated share of rows lost during normalization")
	timeCol := flag.String("time-column", "", "exact header name of the time column (optional)")
	magCol := flag.String("magnitude-column", "", "exact header name of the magnitude column (optional)")
	depthCol := flag.String("depth-column", "", "exact header name of the depth column (optional)")
	flag.Parse()

	if *catalogPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	hints := domain.ColumnHints{Time: *timeCol, Magnitude: *magCol, Depth: *depthCol}
	if code := run(*catalogPath, *psiS, *maxDropRatio, hints); code != 0 {
		os.Exit(code)
	}
}

func run(catalogPath string, psiS, maxDropRatio float64, hints domain.ColumnHints) int {
	fmt.Println("=== Catalog Integrity Validation ===")
	fmt.Println()

	table, err := localfile.NewReader(catalogPath).ReadCatalog()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: read catalog: %v\n", err)
		return 1
	}

	events, normErr := domain.Normalize(table, hints)

	phases := []*phase{
		validateSchema(table, hints, normErr),
		validateRowYield(table, events, maxDropRatio),
		validateEventSet(events),
		validateIndicators(events, psiS),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d in file, %d normalized\n", len(table.Rows), len(events))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Schema Resolution ──
// The three required columns must resolve through the alias table or hints.

func validateSchema(table domain.Table, hints domain.ColumnHints, normErr error) *phase {
	p := &phase{name: "Phase 1: Schema Resolution"}

	if len(table.Columns) == 0 {
		p.errorf("catalog has no header columns")
		return p
	}
	if normErr != nil {
		p.errorf("columns %v do not resolve: %v", table.Columns, normErr)
	}
	if hints != (domain.ColumnHints{}) {
		fmt.Printf("  Note: using column hints %+v\n", hints)
	}
	return p
}

// ── Phase 2: Row Yield ──
// Some loss to annotation-heavy cells is expected; wholesale loss is not.

func validateRowYield(table domain.Table, events domain.EventSet, maxDropRatio float64) *phase {
	p := &phase{name: "Phase 2: Row Yield"}

	if len(table.Rows) == 0 {
		p.errorf("catalog has a header but no data rows")
		return p
	}
	if len(events) == 0 {
		p.errorf("no row survived normalization (%d in file)", len(table.Rows))
		return p
	}

	dropped := len(table.Rows) - len(events)
	ratio := float64(dropped) / float64(len(table.Rows))
	if ratio > maxDropRatio {
		p.errorf("%d of %d rows dropped (%.0f%%, tolerance %.0f%%)",
			dropped, len(table.Rows), ratio*100, maxDropRatio*100)
	}
	return p
}

// ── Phase 3: Event Set Invariants ──

func validateEventSet(events domain.EventSet) *phase {
	p := &phase{name: "Phase 3: Event Set Invariants"}

	for i, e := range events {
		if i > 0 && e.Time.After(events[i-1].Time) {
			p.errorf("event %d: out of order (%s after %s)",
				i, e.Time.Format(time.RFC3339), events[i-1].Time.Format(time.RFC3339))
		}
		if e.Time.IsZero() {
			p.errorf("event %d: zero timestamp", i)
		}
		if math.IsNaN(e.Magnitude) || math.IsInf(e.Magnitude, 0) {
			p.errorf("event %d: magnitude is not finite", i)
		}
		if e.DepthKm < 0 || math.IsNaN(e.DepthKm) || math.IsInf(e.DepthKm, 0) {
			p.errorf("event %d: depth %g km is invalid", i, e.DepthKm)
		}
	}
	return p
}

// ── Phase 4: Indicator Sanity ──

func validateIndicators(events domain.EventSet, psiS float64) *phase {
	p := &phase{name: "Phase 4: Indicator Sanity"}

	m := domain.ComputeMetrics(events, psiS)
	if m.EII < 0 || m.EII > 1 {
		p.errorf("EII %g outside [0, 1]", m.EII)
	}
	if m.ShallowRatio < 0 || m.ShallowRatio > 1 {
		p.errorf("shallow ratio %g outside [0, 1]", m.ShallowRatio)
	}
	if len(events) > 0 && m.MdMax < m.MdMean {
		p.errorf("MdMax %g below MdMean %g", m.MdMax, m.MdMean)
	}

	assessment := domain.Classify(m.EII, 0, 0)
	if assessment.DiagnosticText == "" {
		p.errorf("classifier produced empty diagnostic text")
	}

	fmt.Printf("  EII at psi=%.2f: %.3f (%s)\n", psiS, m.EII, assessment.Phase)
	return p
}
