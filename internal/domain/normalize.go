package domain

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Canonical column names. A table already using these bypasses alias
// resolution entirely.
const (
	ColumnTime      = "time"
	ColumnMagnitude = "magnitude"
	ColumnDepth     = "depth_km"
)

// Alias substrings matched case-insensitively, in order, when no canonical
// column is present. "md" covers the INGV duration magnitude column.
var (
	timeAliases      = []string{"time", "utc"}
	magnitudeAliases = []string{"magnitude", "mag", "md"}
	depthAliases     = []string{"depth"}
)

// magnitudeTokenRe extracts the first numeric token from a free-form
// magnitude cell, e.g. "Md 0.5±0.3" -> "0.5". No sign is accepted, matching
// the catalog export convention this tolerates.
var magnitudeTokenRe = regexp.MustCompile(`(\d+\.\d+|\d+)`)

// timeLayouts tried in order by the permissive time parser. The fractional
// layouts also accept values without fractions.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04",
}

// Normalize converts a raw table into an EventSet ordered most recent first.
// Column resolution per field: exact canonical name, then the first column
// whose name case-insensitively contains a known alias, then SchemaError.
// Rows missing any of the three fields after parsing are dropped whole.
// Normalize is pure and never fails on per-row malformed data.
func Normalize(table Table, hints ColumnHints) (EventSet, error) {
	if len(table.Columns) == 0 {
		return nil, &SchemaError{Reason: "table has no columns"}
	}

	timeIdx, err := resolveColumn(table.Columns, hints.Time, ColumnTime, timeAliases)
	if err != nil {
		return nil, err
	}
	magIdx, err := resolveColumn(table.Columns, hints.Magnitude, ColumnMagnitude, magnitudeAliases)
	if err != nil {
		return nil, err
	}
	depthIdx, err := resolveColumn(table.Columns, hints.Depth, ColumnDepth, depthAliases)
	if err != nil {
		return nil, err
	}

	events := make(EventSet, 0, len(table.Rows))
	for _, row := range table.Rows {
		event, ok := parseRow(row, timeIdx, magIdx, depthIdx)
		if !ok {
			continue
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.After(events[j].Time)
	})
	return events, nil
}

// resolveColumn finds the index of the column backing a canonical field.
func resolveColumn(columns []string, hint, canonical string, aliases []string) (int, error) {
	if hint != "" {
		for i, c := range columns {
			if strings.EqualFold(strings.TrimSpace(c), hint) {
				return i, nil
			}
		}
		return 0, &SchemaError{Field: canonical, Reason: "hinted column " + strconv.Quote(hint) + " not found"}
	}

	for i, c := range columns {
		if strings.TrimSpace(c) == canonical {
			return i, nil
		}
	}
	for _, alias := range aliases {
		for i, c := range columns {
			if strings.Contains(strings.ToLower(strings.TrimSpace(c)), alias) {
				return i, nil
			}
		}
	}
	return 0, &SchemaError{Field: canonical, Reason: "no candidate column found"}
}

func parseRow(row []string, timeIdx, magIdx, depthIdx int) (SeismicEvent, bool) {
	maxIdx := timeIdx
	if magIdx > maxIdx {
		maxIdx = magIdx
	}
	if depthIdx > maxIdx {
		maxIdx = depthIdx
	}
	if len(row) <= maxIdx {
		return SeismicEvent{}, false
	}

	t, ok := parseEventTime(row[timeIdx])
	if !ok {
		return SeismicEvent{}, false
	}
	mag, ok := ExtractMagnitude(row[magIdx])
	if !ok {
		return SeismicEvent{}, false
	}
	depth, ok := parseDepth(row[depthIdx])
	if !ok {
		return SeismicEvent{}, false
	}

	return SeismicEvent{Time: t, Magnitude: mag, DepthKm: depth}, true
}

// parseEventTime tries each known layout in UTC.
func parseEventTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractMagnitude pulls the first decimal or integer token out of a
// magnitude cell. Returns false when the cell carries no numeric token.
func ExtractMagnitude(value string) (float64, bool) {
	token := magnitudeTokenRe.FindString(strings.TrimSpace(value))
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// parseDepth accepts a finite, non-negative depth in kilometers.
func parseDepth(value string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
