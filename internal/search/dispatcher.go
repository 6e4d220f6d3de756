// Package search fans a free-text query out across the tracked entity
// subtypes in parallel and merges the results.
package search

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/trackline/trackline/internal/client"
	"github.com/trackline/trackline/internal/history"
	"github.com/trackline/trackline/internal/metrics"
	"github.com/trackline/trackline/internal/models"
)

// Subtypes is the fixed set of entity subtypes a search covers.
var Subtypes = []string{
	"defect",
	"story",
	"quality_story",
	"epic",
	"feature",
	"task",
	"requirement",
	"test",
}

const perSubtypeLimit = 25

// ResultItem is one merged search hit, wrapped with the literal search
// term for history purposes. NoResults marks the sentinel item returned
// when the whole merge came back empty.
type ResultItem struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Subtype    string `json:"subtype"`
	Name       string `json:"name"`
	Highlight  string `json:"highlight,omitempty"`
	SearchTerm string `json:"search_term"`
	NoResults  bool   `json:"no_results,omitempty"`
}

// Dispatcher runs parallel per-subtype queries against the remote
// service and records committed terms in the search history.
type Dispatcher struct {
	client  *client.Client
	history *history.Store
	logger  *slog.Logger
}

// NewDispatcher creates a search dispatcher. The history store may be nil
// when no persistence is wanted.
func NewDispatcher(c *client.Client, hist *history.Store, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{client: c, history: hist, logger: logger}
}

// Search issues one query per tracked subtype in parallel and joins on
// all of them: any branch error fails the whole search. Results are
// concatenated without cross-category ranking. An empty merge yields a
// single sentinel "no results" item.
func (d *Dispatcher) Search(ctx context.Context, term string) ([]ResultItem, error) {
	perSubtype := make([][]ResultItem, len(Subtypes))
	g, gctx := errgroup.WithContext(ctx)

	for i, subtype := range Subtypes {
		g.Go(func() error {
			items, err := d.searchSubtype(gctx, subtype, term)
			if err != nil {
				return fmt.Errorf("search: %s: %w", subtype, err)
			}
			perSubtype[i] = items
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []ResultItem
	for _, items := range perSubtype {
		merged = append(merged, items...)
	}

	metrics.Inc(metrics.SearchesTotal)
	if d.history != nil {
		if err := d.history.Add(term); err != nil {
			d.logger.Warn("recording search history", "error", err)
		}
	}

	if len(merged) == 0 {
		return []ResultItem{{Name: "No results found", SearchTerm: term, NoResults: true}}, nil
	}
	return merged, nil
}

// searchSubtype queries one subtype's endpoint with the fixed projection
// plus the server-computed highlight field.
func (d *Dispatcher) searchSubtype(ctx context.Context, subtype, term string) ([]ResultItem, error) {
	endpoint, ok := client.EndpointForType(subtype)
	if !ok {
		return nil, fmt.Errorf("no endpoint for subtype %q", subtype)
	}

	env, err := d.client.Entity(endpoint).
		Fields("id", "name", "type", "subtype", "global_text_search_result").
		TextSearch(term).
		Limit(perSubtypeLimit).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]ResultItem, 0, len(env.Data))
	for _, raw := range env.Data {
		e := models.EntityFromWire(raw)
		item := ResultItem{
			ID:         e.ID,
			Type:       e.Type,
			Subtype:    subtype,
			Name:       e.Name,
			SearchTerm: term,
		}
		if hl, ok := e.Fields["global_text_search_result"].(string); ok {
			item.Highlight = hl
		}
		items = append(items, item)
	}
	return items, nil
}
