package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Skip reasons reported on ItemsSkipped
const (
	ReasonDuplicate = "duplicate"
	ReasonMalformed = "malformed"
	ReasonPersist   = "persist"
)

// Metrics holds the scan collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	CompaniesScanned prometheus.Counter
	AlertsCreated    *prometheus.CounterVec
	ItemsSkipped     *prometheus.CounterVec
	ScanErrors       prometheus.Counter
	ScanDuration     prometheus.Histogram
	StealthScores    prometheus.Histogram
}

// New creates and registers the collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CompaniesScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fundtrack_companies_scanned_total",
			Help: "Companies scanned for news.",
		}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundtrack_alerts_created_total",
			Help: "Alerts persisted, by topic.",
		}, []string{"topic"}),
		ItemsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fundtrack_items_skipped_total",
			Help: "News items not turned into alerts, by reason.",
		}, []string{"reason"}),
		ScanErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fundtrack_scan_errors_total",
			Help: "Company scans that failed.",
		}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundtrack_scan_duration_seconds",
			Help:    "Duration of a single company scan.",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		StealthScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fundtrack_stealth_score",
			Help:    "Distribution of stealth scores.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
	}

	m.registry.MustRegister(
		m.CompaniesScanned,
		m.AlertsCreated,
		m.ItemsSkipped,
		m.ScanErrors,
		m.ScanDuration,
		m.StealthScores,
	)
	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveScan records one company scan
func (m *Metrics) ObserveScan(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.CompaniesScanned.Inc()
	m.ScanDuration.Observe(d.Seconds())
	if err != nil {
		m.ScanErrors.Inc()
	}
}

// AddSkipped records n skipped items for reason
func (m *Metrics) AddSkipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ItemsSkipped.WithLabelValues(reason).Add(float64(n))
}

// AddAlert records one persisted alert
func (m *Metrics) AddAlert(topic string) {
	if m == nil {
		return
	}
	m.AlertsCreated.WithLabelValues(topic).Inc()
}

// ObserveStealthScore records one stealth score
func (m *Metrics) ObserveStealthScore(score int) {
	if m == nil {
		return
	}
	m.StealthScores.Observe(float64(score))
}
