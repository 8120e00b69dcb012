// Command genevents generates a synthetic local catalog fixture in the shape
// of an INGV export. It runs the generated table through the actual
// normalization and metric code so the printed stats match monitor behavior.
//
// Usage:
//
//	go run ./cmd/genevents -out events.csv -count 40 -seed 1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

var baseTime = time.Date(2024, time.April, 26, 9, 0, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "events.csv", "output path for the catalog fixture")
	count := flag.Int("count", 40, "number of event rows to generate")
	seed := flag.Int64("seed", 1, "random seed for reproducible fixtures")
	psiS := flag.Float64("psi", 0.72, "pressure proxy used for the stats printout")
	flag.Parse()

	if *count < 1 {
		flag.Usage()
		return fmt.Errorf("-count must be at least 1")
	}

	rng := rand.New(rand.NewSource(*seed))
	table := generate(rng, *count)

	if err := writeCSV(*out, table); err != nil {
		return fmt.Errorf("writing fixture: %w", err)
	}
	log.Printf("wrote %d rows: %s", len(table.Rows), *out)

	printStats(table, *psiS)
	return nil
}

// generate produces rows in the messy shape real exports arrive in: swarm
// depths clustered shallow, duration magnitudes skewed small, and a share of
// magnitude cells carrying quality annotations around the numeric token.
func generate(rng *rand.Rand, count int) domain.Table {
	table := domain.Table{
		Columns: []string{"Time", "Magnitude", "Depth/Km"},
	}

	for i := 0; i < count; i++ {
		t := baseTime.Add(-time.Duration(rng.Intn(7*24*60)) * time.Minute)
		mag := rng.Float64()*2.2 + 0.1
		depth := rng.Float64()*4.5 + 0.3

		magCell := fmt.Sprintf("%.1f", mag)
		switch rng.Intn(5) {
		case 0:
			magCell = fmt.Sprintf("Md %.1f", mag)
		case 1:
			magCell = fmt.Sprintf("%.1f±0.3", mag)
		}

		table.Rows = append(table.Rows, []string{
			t.Format("2006-01-02 15:04:05"),
			magCell,
			fmt.Sprintf("%.1f", depth),
		})
	}

	return table
}

func writeCSV(path string, table domain.Table) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(table.Columns); err != nil {
		return err
	}
	if err := w.WriteAll(table.Rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func printStats(table domain.Table, psiS float64) {
	events, err := domain.Normalize(table, domain.ColumnHints{})
	if err != nil {
		log.Printf("fixture does not normalize: %v", err)
		return
	}

	m := domain.ComputeMetrics(events, psiS)

	shallow := 0
	for _, e := range events {
		if e.DepthKm < domain.ShallowDepthKm {
			shallow++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Events: %d (shallow: %d)\n", len(events), shallow)
	fmt.Printf("MdMax: %.2f, MdMean: %.2f, ShallowRatio: %.3f\n", m.MdMax, m.MdMean, m.ShallowRatio)
	fmt.Printf("EII at psi=%.2f: %.3f\n", psiS, m.EII)
	fmt.Printf("Newest: %s, Oldest: %s\n",
		events[0].Time.Format(time.RFC3339),
		events[len(events)-1].Time.Format(time.RFC3339))
}
