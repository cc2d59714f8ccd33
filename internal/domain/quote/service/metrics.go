package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/FACorreiaa/quote-ingest/internal/domain/quote/parser"
)

// Metrics records parse and import counters. A nil *Metrics records nothing.
type Metrics struct {
	ParsesTotal   *prometheus.CounterVec
	ParseDuration *prometheus.HistogramVec
	LinesTotal    *prometheus.CounterVec
	WarningsTotal *prometheus.CounterVec
	ImportRows    *prometheus.CounterVec
}

// NewMetrics registers the quote metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ParsesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_parses_total",
				Help: "Total number of parsed quote documents",
			},
			[]string{"method", "outcome"},
		),
		ParseDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quote_parse_duration_seconds",
				Help:    "Time taken to extract and parse a quote document",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"method"},
		),
		LinesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_lines_total",
				Help: "Total number of classified quote lines",
			},
			[]string{"kind"},
		),
		WarningsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_warnings_total",
				Help: "Total number of validation warnings",
			},
			[]string{"type"},
		),
		ImportRows: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quote_import_rows_total",
				Help: "Total number of line items written to the database",
			},
			[]string{"status"},
		),
	}
}

func (m *Metrics) recordParse(method string, result *parser.ParseResult, d time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "none"
	}
	outcome := "failed"
	if result.Success {
		outcome = "success"
	}
	m.ParsesTotal.WithLabelValues(method, outcome).Inc()
	m.ParseDuration.WithLabelValues(method).Observe(d.Seconds())
	m.LinesTotal.WithLabelValues("product").Add(float64(result.Summary.ProductRows))
	m.LinesTotal.WithLabelValues("discount").Add(float64(result.Summary.DiscountRows))
	m.LinesTotal.WithLabelValues("skipped").Add(float64(result.Summary.SkippedRows))
	for _, w := range result.Warnings {
		m.WarningsTotal.WithLabelValues(string(w.Type)).Inc()
	}
}

func (m *Metrics) recordImport(imported, failed int) {
	if m == nil {
		return
	}
	m.ImportRows.WithLabelValues("imported").Add(float64(imported))
	m.ImportRows.WithLabelValues("failed").Add(float64(failed))
}
