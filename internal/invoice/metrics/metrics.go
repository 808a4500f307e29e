package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for ScansTotal.
const (
	OutcomeClean       = "clean"
	OutcomeBlacklisted = "blacklisted"
	OutcomeFailed      = "failed"
)

// Metrics provides observability for invoice scanning.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	ScansTotal       *prometheus.CounterVec
	BlacklistedFound prometheus.Counter
	FetchDuration    prometheus.Histogram
	ExtractDuration  prometheus.Histogram
	ScanDuration     prometheus.Histogram
	TextCacheLookups *prometheus.CounterVec
}

// New registers the invoice metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		ScansTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invoiceguard_invoice_scans_total",
			Help: "Invoice scans by outcome",
		}, []string{"outcome"}),
		BlacklistedFound: f.NewCounter(prometheus.CounterOpts{
			Name: "invoiceguard_blacklisted_ibans_found_total",
			Help: "Blacklisted IBANs reported across all scans",
		}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoiceguard_invoice_fetch_duration_seconds",
			Help:    "Duration of invoice document retrieval",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		ExtractDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoiceguard_invoice_extract_duration_seconds",
			Help:    "Duration of PDF text extraction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "invoiceguard_invoice_scan_duration_seconds",
			Help:    "End-to-end duration of ScanInvoice",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		TextCacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "invoiceguard_text_cache_lookups_total",
			Help: "Extracted-text cache lookups by result",
		}, []string{"result"}),
	}
}

// ObserveScan records the outcome of a finished scan.
func (m *Metrics) ObserveScan(start time.Time, outcome string, found int) {
	if m == nil {
		return
	}
	m.ScansTotal.WithLabelValues(outcome).Inc()
	m.ScanDuration.Observe(time.Since(start).Seconds())
	if found > 0 {
		m.BlacklistedFound.Add(float64(found))
	}
}

// ObserveFetch records the duration of a document retrieval.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveFetch(start time.Time) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(time.Since(start).Seconds())
}

// ObserveExtract records the duration of a text extraction.
func (m *Metrics) ObserveExtract(start time.Time) {
	if m == nil {
		return
	}
	m.ExtractDuration.Observe(time.Since(start).Seconds())
}

// IncrementCacheLookup counts a text cache hit or miss.
func (m *Metrics) IncrementCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.TextCacheLookups.WithLabelValues(result).Inc()
}
