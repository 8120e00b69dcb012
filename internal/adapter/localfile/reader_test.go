package localfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadCatalog(t *testing.T) {
	path := writeCatalog(t, "Time,Magnitude,Depth/Km\n2024-04-26 08:40,1.3,2.1\n2024-04-26 03:12,0.8,3.4\n")

	table, err := NewReader(path).ReadCatalog()
	require.NoError(t, err)

	assert.Equal(t, []string{"Time", "Magnitude", "Depth/Km"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "1.3", table.Rows[0][1])
}

func TestReadCatalog_NormalizesThroughTheSchema(t *testing.T) {
	path := writeCatalog(t, "utc time,Md (duration),Depth km\n2024-04-26 08:40,Useless 0.5±0.3,2.1\n")

	table, err := NewReader(path).ReadCatalog()
	require.NoError(t, err)

	events, err := domain.Normalize(table, domain.ColumnHints{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 0.5, events[0].Magnitude)
}

func TestReadCatalog_HeaderOnlyIsValid(t *testing.T) {
	path := writeCatalog(t, "time,magnitude,depth_km\n")

	table, err := NewReader(path).ReadCatalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"time", "magnitude", "depth_km"}, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestReadCatalog_MissingFile(t *testing.T) {
	_, err := NewReader(filepath.Join(t.TempDir(), "nope.csv")).ReadCatalog()

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Reason, "open")
}

func TestReadCatalog_EmptyFile(t *testing.T) {
	path := writeCatalog(t, "")

	_, err := NewReader(path).ReadCatalog()

	var schemaErr *domain.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Contains(t, schemaErr.Reason, "header")
}

func TestReadCatalog_RaggedRowsKept(t *testing.T) {
	// FieldsPerRecord is disabled so short rows survive the reader; the
	// normalizer is responsible for dropping them.
	path := writeCatalog(t, "time,magnitude,depth_km\n2024-04-26 08:40,1.3\n2024-04-26 03:12,0.8,3.4\n")

	table, err := NewReader(path).ReadCatalog()
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)

	events, err := domain.Normalize(table, domain.ColumnHints{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 0.8, events[0].Magnitude)
}
