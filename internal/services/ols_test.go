// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/ontomap/internal/cache"
	"github.com/pdiddy/ontomap/internal/resilience"
	"github.com/pdiddy/ontomap/pkg/types"
)

const olsFixture = `{
	"response": {
		"numFound": 2,
		"docs": [
			{
				"iri": "http://purl.obolibrary.org/obo/HP_0012378",
				"label": "Fatigue",
				"ontology_name": "hp",
				"description": ["A subjective feeling of tiredness."],
				"synonym": ["Tiredness"]
			},
			{
				"iri": "",
				"label": "dropped, no IRI"
			},
			{
				"iri": "http://purl.obolibrary.org/obo/SYMP_0019177",
				"label": "fatigue",
				"ontology_name": "symp"
			}
		]
	}
}`

func newOLSClient(ts *httptest.Server, store *cache.Store) *OLSClient {
	return &OLSClient{
		Client: ts.Client(),
		Cache:  store,
		HTTP:   types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "ontomap-test/0.1"},
	}
}

func withOLSBase(t *testing.T, url string) {
	t.Helper()
	old := olsAPIBase
	olsAPIBase = url
	t.Cleanup(func() { olsAPIBase = old })
}

func TestOLSSearchParsesRecords(t *testing.T) {
	var gotQuery, gotOntology, gotRows string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotOntology = r.URL.Query().Get("ontology")
		gotRows = r.URL.Query().Get("rows")
		w.Write([]byte(olsFixture))
	}))
	defer ts.Close()
	withOLSBase(t, ts.URL)

	results, err := newOLSClient(ts, nil).Search(context.Background(), "fatigue", "HP,SYMP,NCIT", 7)
	require.NoError(t, err)

	assert.Equal(t, "fatigue", gotQuery)
	// HP and SYMP have OLS equivalents; NCIT does too. All lowercase.
	assert.Equal(t, "hp,symp,ncit", gotOntology)
	assert.Equal(t, "7", gotRows)

	require.Len(t, results, 2)
	first := results[0]
	assert.Equal(t, "http://purl.obolibrary.org/obo/HP_0012378", first.URI)
	assert.Equal(t, "Fatigue", first.Label)
	assert.Equal(t, "HP", first.Ontology)
	assert.Equal(t, "A subjective feeling of tiredness.", first.Description)
	assert.Equal(t, []string{"Tiredness"}, first.Synonyms)
	assert.Equal(t, types.SourceOLS, first.Source)
}

func TestConvertOntologies(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"known codes", "MONDO,HP", "mondo,hp"},
		{"pro special case", "PRO", "pr"},
		{"unknown dropped", "MONDO,ICD10", "mondo"},
		{"all unknown", "ICD10,LOINC", ""},
		{"whitespace and case", " mondo , Hp ", "mondo,hp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := convertOntologies(tt.in); got != tt.want {
				t.Errorf("convertOntologies(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOLSTransportErrorIsNetworkKind(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	withOLSBase(t, ts.URL)
	client := newOLSClient(ts, nil)
	// Closing the server forces a connection failure.
	ts.Close()

	_, err := client.Search(context.Background(), "q", "", 5)
	require.Error(t, err)
	assert.True(t, resilience.IsKind(err, resilience.KindNetwork), "got %v", err)
	assert.True(t, resilience.Retryable(err))
}

func TestOLSTimeoutClassified(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer ts.Close()
	withOLSBase(t, ts.URL)

	c := newOLSClient(ts, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Search(ctx, "q", "", 5)
	require.Error(t, err)
	assert.True(t, resilience.IsKind(err, resilience.KindTimeout), "got %v", err)
}

func TestOLSServerErrorRetryable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	withOLSBase(t, ts.URL)

	_, err := newOLSClient(ts, nil).Search(context.Background(), "q", "", 5)
	require.Error(t, err)
	assert.True(t, resilience.IsKind(err, resilience.KindServiceUnavailable))
	assert.True(t, resilience.Retryable(err))
}

func TestOLSPopulatesCacheAfterSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(olsFixture))
	}))
	defer ts.Close()
	withOLSBase(t, ts.URL)

	store := cache.NewStore(types.CacheConfig{Enabled: true}, nil)
	c := newOLSClient(ts, store)

	_, err := c.Search(context.Background(), "fatigue", "HP", 5)
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "fatigue", "HP", 5)
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	stats := store.GetStats()
	assert.Equal(t, uint64(1), stats.Sets)
	assert.Equal(t, uint64(1), stats.Hits)
}
