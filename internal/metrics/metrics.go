// Package metrics provides application-level counters using stdlib expvar.
// Counters are exported on /debug/vars by the HTTP API.
package metrics

import "expvar"

// Operation counters.
var (
	GeneratedTotal        = expvar.NewInt("xrechnung_generated_total")
	ValidationFailedTotal = expvar.NewInt("xrechnung_validation_failed_total")
	InspectedTotal        = expvar.NewInt("xrechnung_inspected_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }
