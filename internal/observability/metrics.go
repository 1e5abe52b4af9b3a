package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one ETL run.
// Each Metrics owns its registry so a run can be pushed to a Pushgateway in
// isolation and tests never collide on registration.
type Metrics struct {
	Registry *prometheus.Registry

	IncidentsFetched  prometheus.Counter
	IncidentsExported prometheus.Counter
	TransformErrors   prometheus.Counter
	YearsExported     prometheus.Counter
	FilesWritten      prometheus.Counter
	MessagesProduced  prometheus.Counter

	FetchDuration      prometheus.Histogram
	RunDuration        prometheus.Gauge
	LastSuccessSeconds prometheus.Gauge

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates all run metrics and registers them with a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		IncidentsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shootings_etl",
			Name:      "incidents_fetched_total",
			Help:      "Total rows read from the CARTO dataset.",
		}),
		IncidentsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shootings_etl",
			Name:      "incidents_exported_total",
			Help:      "Total incidents written to per-year feature files.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shootings_etl",
			Name:      "transform_errors_total",
			Help:      "Total rows that failed enrichment.",
		}),
		YearsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shootings_etl",
			Name:      "years_exported_total",
			Help:      "Total year partitions loaded.",
		}),
		FilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shootings_etl",
			Name:      "files_written_total",
			Help:      "Total output files written.",
		}),
		MessagesProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "shootings_etl",
			Name:      "messages_produced_total",
			Help:      "Total incidents published to the Kafka topic.",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shootings_etl",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of the CARTO SQL API request.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shootings_etl",
			Name:      "run_duration_seconds",
			Help:      "Duration of the last extract-transform-load run.",
		}),
		LastSuccessSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shootings_etl",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shootings_etl",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shootings_etl",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shootings_etl",
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shootings_etl",
			Name:      "geocode_enabled",
			Help:      "1 when geocoding enrichment is enabled, 0 otherwise.",
		}),
	}

	m.Registry.MustRegister(
		m.IncidentsFetched,
		m.IncidentsExported,
		m.TransformErrors,
		m.YearsExported,
		m.FilesWritten,
		m.MessagesProduced,
		m.FetchDuration,
		m.RunDuration,
		m.LastSuccessSeconds,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}
