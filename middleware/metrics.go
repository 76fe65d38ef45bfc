package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	goalps "github.com/reoring/goalps"
)

// Metrics counts request documents by encoding and result.
type Metrics struct {
	documents *prometheus.CounterVec
	bytes     *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "alps",
			Name:      "documents_total",
			Help:      "Request documents parsed, by encoding and result (ok or issue code).",
		}, []string{"format", "result"}),
		bytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "alps",
			Name:      "document_bytes",
			Help:      "Declared size of request documents.",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		}, []string{"format"}),
	}
	if reg != nil {
		reg.MustRegister(m.documents, m.bytes)
	}
	return m
}

// Observe records the outcome of parsing one request body.
func (m *Metrics) Observe(r *http.Request, err error) {
	if m == nil {
		return
	}
	format := "unknown"
	if f, ok := goalps.LookupFormat(requestMediaType(r)); ok {
		format = f.Name()
	}
	result := "ok"
	if err != nil {
		if result = goalps.CodeOf(err); result == "" {
			result = goalps.CodeParseError
		}
	}
	m.documents.WithLabelValues(format, result).Inc()
	if r.ContentLength >= 0 {
		m.bytes.WithLabelValues(format).Observe(float64(r.ContentLength))
	}
}
