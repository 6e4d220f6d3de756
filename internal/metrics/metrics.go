// Package metrics holds the expvar counters trackline publishes: session
// lifecycle, search volume and hydration outcomes. Any process that serves
// HTTP on the default mux exposes them under /debug/vars.
package metrics

import "expvar"

// Operation counters.
var (
	LoginsTotal            = expvar.NewInt("trackline_logins_total")
	SearchesTotal          = expvar.NewInt("trackline_searches_total")
	HydrationsTotal        = expvar.NewInt("trackline_hydrations_total")
	SchemaFetchesTotal     = expvar.NewInt("trackline_schema_fetches_total")
	UnresolvedRefsTotal    = expvar.NewInt("trackline_unresolved_references_total")
	SessionsDiscardedTotal = expvar.NewInt("trackline_sessions_discarded_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
