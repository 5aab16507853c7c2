package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "option_chain"

var (
	Registry = prometheus.NewRegistry()

	MergedRecords = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "merged_records_total",
		Help:      "Records applied to the store.",
	})

	StoredRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stored_records",
		Help:      "Records currently held by the store.",
	})

	FeedMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "feed_messages_total",
		Help:      "Feed messages by decode result.",
	}, []string{"result"})

	FeedConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_connected",
		Help:      "1 while the feed connection is open.",
	})

	FormulaResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "formula_results_total",
		Help:      "Per-row formula results by status.",
	}, []string{"status"})

	RenderSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "render_seconds",
		Help:      "Time to group and evaluate one view.",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
	})

	ArchiveFlushed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "archive_flushed_total",
		Help:      "Records written to the archive.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		MergedRecords,
		StoredRecords,
		FeedMessages,
		FeedConnected,
		FormulaResults,
		RenderSeconds,
		ArchiveFlushed,
	)
}

func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
