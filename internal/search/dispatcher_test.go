package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trackline/trackline/internal/client"
	"github.com/trackline/trackline/internal/history"
)

// newSearchServer serves one hit per subtype endpoint unless the endpoint
// is listed in empty or failing.
func newSearchServer(t *testing.T, empty, failing map[string]bool) (*client.Client, *sync.Map) {
	t.Helper()
	var hits sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		endpoint := parts[len(parts)-1]
		if n, ok := hits.Load(endpoint); ok {
			hits.Store(endpoint, n.(int)+1)
		} else {
			hits.Store(endpoint, 1)
		}

		if failing[endpoint] {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if empty[endpoint] {
			_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{
			map[string]any{
				"id":                        "1",
				"name":                      "hit from " + endpoint,
				"type":                      "work_item",
				"global_text_search_result": "...<em>match</em>...",
			},
		}})
	}))
	t.Cleanup(srv.Close)
	return client.New(srv.URL, "500", "1001", slog.Default()), &hits
}

func allEmpty() map[string]bool {
	m := make(map[string]bool)
	for _, st := range Subtypes {
		ep, _ := client.EndpointForType(st)
		m[ep] = true
	}
	return m
}

func TestSearch_FansOutAcrossAllSubtypes(t *testing.T) {
	c, hits := newSearchServer(t, nil, nil)
	d := NewDispatcher(c, nil, slog.Default())

	results, err := d.Search(context.Background(), "login crash")
	require.NoError(t, err)
	assert.Len(t, results, len(Subtypes))

	for _, st := range Subtypes {
		ep, ok := client.EndpointForType(st)
		require.True(t, ok)
		n, ok := hits.Load(ep)
		require.True(t, ok, "endpoint %s was not queried", ep)
		assert.Equal(t, 1, n)
	}

	subtypesSeen := make(map[string]bool)
	for _, r := range results {
		assert.Equal(t, "login crash", r.SearchTerm)
		assert.False(t, r.NoResults)
		assert.Equal(t, "...<em>match</em>...", r.Highlight)
		subtypesSeen[r.Subtype] = true
	}
	assert.Len(t, subtypesSeen, len(Subtypes))
}

func TestSearch_EmptyMergeYieldsSentinel(t *testing.T) {
	c, _ := newSearchServer(t, allEmpty(), nil)
	d := NewDispatcher(c, nil, slog.Default())

	results, err := d.Search(context.Background(), "nothing matches this")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].NoResults)
	assert.Equal(t, "nothing matches this", results[0].SearchTerm)
}

func TestSearch_AnyBranchErrorFailsWhole(t *testing.T) {
	c, _ := newSearchServer(t, nil, map[string]bool{"epics": true})
	d := NewDispatcher(c, nil, slog.Default())

	_, err := d.Search(context.Background(), "term")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "epic")
}

func TestSearch_RecordsHistory(t *testing.T) {
	c, _ := newSearchServer(t, nil, nil)

	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"), slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	d := NewDispatcher(c, hist, slog.Default())

	for i := 0; i < 7; i++ {
		_, err := d.Search(context.Background(), fmt.Sprintf("term-%d", i))
		require.NoError(t, err)
	}
	// A repeat of an old term moves it to the front, not a new entry.
	_, err = d.Search(context.Background(), "term-4")
	require.NoError(t, err)

	terms, err := hist.Terms()
	require.NoError(t, err)
	assert.Equal(t, []string{"term-4", "term-6", "term-5", "term-3", "term-2"}, terms)
}
