package ingv

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sunwolf-labs/supt-monitor/internal/domain"
)

const fdsnBody = `#EventID|Time|Latitude|Longitude|Depth/Km|Author|Catalog|Contributor|ContributorID|MagType|Magnitude|MagAuthor|EventLocationName
34567|2024-04-26T08:40:02.120000|40.8217|14.1405|2.1|SURVEY|||| Md|1.3||Campi Flegrei
34568|2024-04-26T03:12:44.000000|40.8301|14.1212|3.4|SURVEY|||| Md|0.8||Campi Flegrei
`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testQuery() Query {
	return Query{
		MinLat: 40.79, MaxLat: 40.84,
		MinLon: 14.10, MaxLon: 14.15,
		Start: time.Date(2024, 4, 19, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 4, 26, 0, 0, 0, 0, time.UTC),
	}
}

func TestFetchCatalog_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fdsnws/event/1/query", r.URL.Path)
		assert.Equal(t, "text", r.URL.Query().Get("format"))
		assert.Equal(t, "40.7900", r.URL.Query().Get("minlat"))
		assert.Equal(t, "14.1500", r.URL.Query().Get("maxlon"))
		assert.Equal(t, "2024-04-19T00:00:00", r.URL.Query().Get("starttime"))
		_, _ = io.WriteString(w, fdsnBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	table, err := c.FetchCatalog(context.Background(), testQuery())
	require.NoError(t, err)

	assert.Equal(t, "EventID", table.Columns[0])
	assert.Equal(t, "Depth/Km", table.Columns[4])
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "2024-04-26T08:40:02.120000", table.Rows[0][1])
	assert.Equal(t, "1.3", table.Rows[0][10])
}

func TestFetchCatalog_FeedsTheNormalizer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, fdsnBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	table, err := c.FetchCatalog(context.Background(), testQuery())
	require.NoError(t, err)

	events, err := domain.Normalize(table, domain.ColumnHints{})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 1.3, events[0].Magnitude)
	assert.Equal(t, 2.1, events[0].DepthKm)
}

func TestFetchCatalog_NoContentIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := c.FetchCatalog(context.Background(), testQuery())

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "ingv", transportErr.Source)
	assert.Contains(t, err.Error(), "empty result set")
}

func TestFetchCatalog_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := c.FetchCatalog(context.Background(), testQuery())

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "status 502")
}

func TestFetchCatalog_HeaderOnlyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "#EventID|Time|Depth/Km|Magnitude\n")
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, discardLogger())
	_, err := c.FetchCatalog(context.Background(), testQuery())

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, err.Error(), "empty result set")
}

func TestFetchCatalog_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, discardLogger())
	_, err := c.FetchCatalog(context.Background(), testQuery())

	var transportErr *domain.TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestParseFDSNText_SkipsTornRows(t *testing.T) {
	body := "#A|B|C\n1|2|3\nbroken|row\n4|5|6\n"
	table, err := parseFDSNText(strings.NewReader(body))
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"4", "5", "6"}, table.Rows[1])
}

func TestParseFDSNText_NoHeader(t *testing.T) {
	_, err := parseFDSNText(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header")
}

func TestQuery_CacheKey(t *testing.T) {
	q := testQuery()
	assert.Equal(t, q.CacheKey(), q.CacheKey())

	q2 := q
	q2.End = q.End.Add(time.Hour)
	assert.NotEqual(t, q.CacheKey(), q2.CacheKey())
}
