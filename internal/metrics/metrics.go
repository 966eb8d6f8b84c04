// Package metrics exposes Prometheus collectors for the scrape service.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scrapePagesTotal      *prometheus.CounterVec
	scrapeJobsTotal       *prometheus.CounterVec
	fetchFailuresTotal    prometheus.Counter
	summaryFallbacksTotal prometheus.Counter

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		scrapePagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagesift_pages_total",
				Help: "Total number of pages processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		scrapeJobsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagesift_jobs_total",
				Help: "Total number of jobs executed, labeled by terminal status.",
			},
			[]string{"status"},
		)

		fetchFailuresTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pagesift_fetch_failures_total",
				Help: "Total number of page fetches that failed.",
			},
		)

		summaryFallbacksTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "pagesift_summary_fallbacks_total",
				Help: "Total number of summaries served by the local fallback.",
			},
		)
	})
}

// ObservePage records one processed page by outcome.
func ObservePage(outcome string) {
	if scrapePagesTotal == nil {
		return
	}
	scrapePagesTotal.WithLabelValues(outcome).Inc()
	if outcome == "failed" && fetchFailuresTotal != nil {
		fetchFailuresTotal.Inc()
	}
}

// ObserveJob records one finished job by terminal status.
func ObserveJob(status string) {
	if scrapeJobsTotal == nil {
		return
	}
	scrapeJobsTotal.WithLabelValues(status).Inc()
}

// ObserveSummaryFallback records one remote-to-local degradation.
func ObserveSummaryFallback() {
	if summaryFallbacksTotal == nil {
		return
	}
	summaryFallbacksTotal.Inc()
}
