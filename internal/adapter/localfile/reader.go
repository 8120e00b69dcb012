// Package localfile reads the local fallback catalog CSV used when the live
// INGV service is unavailable.
package localfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

// Reader loads a delimited catalog file into the raw table shape. Column
// names are loosely matched downstream by the normalizer, so exports with
// headers like "Time UTC" or "Depth/Km" work unchanged.
type Reader struct {
	path string
}

// NewReader creates a reader for the given catalog path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// ReadCatalog parses the file. An unreadable or structurally empty file is a
// SchemaError surfaced to the caller for a non-fatal warning; a header-only
// file is a valid table with zero rows.
func (r *Reader) ReadCatalog() (domain.Table, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return domain.Table{}, &domain.SchemaError{Reason: fmt.Sprintf("open %s: %v", r.path, err)}
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return domain.Table{}, &domain.SchemaError{Reason: fmt.Sprintf("read %s: empty or corrupt header: %v", r.path, err)}
	}

	table := domain.Table{Columns: make([]string, len(header))}
	for i, c := range header {
		table.Columns[i] = strings.TrimSpace(c)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A torn row mid-file; keep what parsed so far. The normalizer
			// drops incomplete rows anyway.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return domain.Table{}, &domain.SchemaError{Reason: fmt.Sprintf("read %s: %v", r.path, err)}
		}
		table.Rows = append(table.Rows, record)
	}

	return table, nil
}
