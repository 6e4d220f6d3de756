package search

import (
	"context"
	"sync"
	"time"
)

// SearchFunc runs one search for a term. Both Dispatcher.Search and the
// service-level search satisfy it.
type SearchFunc func(ctx context.Context, term string) ([]ResultItem, error)

// Interactive drives search-as-you-type front ends: every Update replaces
// the pending term, and the search only runs once input has paused for the
// quiet window.
type Interactive struct {
	search    SearchFunc
	debounce  *Debouncer
	onResults func(term string, items []ResultItem, err error)

	mu   sync.Mutex
	term string
}

// NewInteractive wraps a search function in a debounced update loop.
// onResults is invoked from a timer goroutine, once per settled term.
func NewInteractive(fn SearchFunc, window time.Duration, onResults func(term string, items []ResultItem, err error)) *Interactive {
	return &Interactive{
		search:    fn,
		debounce:  NewDebouncer(window),
		onResults: onResults,
	}
}

// Update replaces the pending term and re-arms the quiet window. A blank
// term cancels the pending search instead.
func (i *Interactive) Update(ctx context.Context, term string) {
	i.mu.Lock()
	i.term = term
	i.mu.Unlock()

	if term == "" {
		i.debounce.Stop()
		return
	}

	i.debounce.Trigger(func() {
		i.mu.Lock()
		current := i.term
		i.mu.Unlock()
		if current == "" {
			return
		}
		items, err := i.search(ctx, current)
		i.onResults(current, items, err)
	})
}

// Stop cancels any pending search.
func (i *Interactive) Stop() {
	i.debounce.Stop()
}
