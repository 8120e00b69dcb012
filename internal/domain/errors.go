package domain

import "fmt"

// SchemaError reports that a required column could not be located in a raw
// table, or that a file-backed source was structurally unreadable. Per-row
// malformed data never produces a SchemaError; bad rows are dropped instead.
type SchemaError struct {
	Field  string // canonical field name, e.g. "magnitude"; empty for structural failures
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema error: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: field %q: %s", e.Field, e.Reason)
}

// TransportError reports a failed fetch from a remote feed: timeout, network
// failure, non-2xx status, malformed body, or an empty result set. Callers
// recover by substituting a fallback source or constant.
type TransportError struct {
	Source string // "ingv" or "noaa"
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s fetch failed: %v", e.Source, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
