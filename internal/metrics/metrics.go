package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	FetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartbridge_fetch_total",
			Help: "Fetch attempts by source and outcome",
		},
		[]string{"source", "status"},
	)
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chartbridge_fetch_duration_seconds",
			Help:    "Time to fetch one symbol",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	BarsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chartbridge_bars_fetched_total",
			Help: "Total candle rows returned by fetches",
		},
		[]string{"source"},
	)
	StoreErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "chartbridge_store_errors_total",
			Help: "Candle store write errors",
		})
)

func init() {
	// MustRegister panics if registration fails (e.g. duplicate)
	prometheus.MustRegister(
		FetchTotal, FetchDuration, BarsFetched,
		StoreErrors,
	)
}
