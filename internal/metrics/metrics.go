// Package metrics exposes the prometheus instruments for the ledger service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPRequestDuration tracks request latency per route and status.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "registro",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route, method, and status code.",
	Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
}, []string{"route", "method", "status"})

// EntriesCreated tracks entries added, by kind.
var EntriesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "registro",
	Subsystem: "ledger",
	Name:      "entries_created_total",
	Help:      "Total ledger entries created, by kind.",
}, []string{"kind"})

// Saves tracks document save attempts by outcome.
var Saves = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "registro",
	Subsystem: "store",
	Name:      "saves_total",
	Help:      "Total document saves by outcome (ok, error, conflict).",
}, []string{"outcome"})

// Exports tracks export downloads by format.
var Exports = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "registro",
	Subsystem: "export",
	Name:      "downloads_total",
	Help:      "Total export downloads by format.",
}, []string{"format"})

// CategoryFetches tracks catalog fetches by outcome.
var CategoryFetches = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "registro",
	Subsystem: "categories",
	Name:      "fetches_total",
	Help:      "Total category catalog fetches by outcome.",
}, []string{"outcome"})

// ArchivedDocuments tracks documents archived by the worker.
var ArchivedDocuments = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "registro",
	Subsystem: "worker",
	Name:      "archived_documents_total",
	Help:      "Total documents archived from save events.",
})

// Handler returns the prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
