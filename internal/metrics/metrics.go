package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the alerts backend. A nil
// *Metrics is valid and records nothing, which keeps tests quiet.
type Metrics struct {
	RegistrationsTotal    prometheus.Counter
	RegistrationRejected  prometheus.Counter
	StoreWriteErrorsTotal prometheus.Counter
	StoreReadErrorsTotal  prometheus.Counter

	BroadcastsTotal      prometheus.Counter
	BroadcastsEmptyTotal prometheus.Counter
	BatchesSentTotal     prometheus.Counter
	BatchesFailedTotal   prometheus.Counter
	TokensAddressedTotal prometheus.Counter

	GatewayRequestDurationSecs prometheus.Histogram

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		RegistrationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_registrations_total",
			Help: "Total number of accepted push token registrations",
		}),
		RegistrationRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_registrations_rejected_total",
			Help: "Total number of registrations rejected for invalid input",
		}),
		StoreWriteErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_store_write_errors_total",
			Help: "Total number of token store write errors (swallowed on the registration path)",
		}),
		StoreReadErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_store_read_errors_total",
			Help: "Total number of token store read errors",
		}),
		BroadcastsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_broadcasts_total",
			Help: "Total number of broadcast invocations that reached dispatch",
		}),
		BroadcastsEmptyTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_broadcasts_empty_total",
			Help: "Total number of broadcasts that addressed zero tokens (no_tokens or no_fcm_key)",
		}),
		BatchesSentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_batches_sent_total",
			Help: "Total number of gateway batches reported successful",
		}),
		BatchesFailedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_batches_failed_total",
			Help: "Total number of gateway batches that failed or were rejected",
		}),
		TokensAddressedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_alerts_tokens_addressed_total",
			Help: "Total number of tokens in successfully dispatched batches",
		}),
		GatewayRequestDurationSecs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "weather_alerts_gateway_request_duration_seconds",
			Help:    "Duration of push gateway batch requests in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
	}

	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.RegistrationsTotal,
		m.RegistrationRejected,
		m.StoreWriteErrorsTotal,
		m.StoreReadErrorsTotal,
		m.BroadcastsTotal,
		m.BroadcastsEmptyTotal,
		m.BatchesSentTotal,
		m.BatchesFailedTotal,
		m.TokensAddressedTotal,
		m.GatewayRequestDurationSecs,
	)

	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRegistration() {
	if m == nil {
		return
	}
	m.RegistrationsTotal.Inc()
}

func (m *Metrics) RecordRegistrationRejected() {
	if m == nil {
		return
	}
	m.RegistrationRejected.Inc()
}

func (m *Metrics) RecordStoreWriteError() {
	if m == nil {
		return
	}
	m.StoreWriteErrorsTotal.Inc()
}

func (m *Metrics) RecordStoreReadError() {
	if m == nil {
		return
	}
	m.StoreReadErrorsTotal.Inc()
}

func (m *Metrics) RecordBroadcast(empty bool) {
	if m == nil {
		return
	}
	if empty {
		m.BroadcastsEmptyTotal.Inc()
		return
	}
	m.BroadcastsTotal.Inc()
}

// RecordBatch records one gateway batch outcome and its duration.
func (m *Metrics) RecordBatch(tokens int, ok bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.GatewayRequestDurationSecs.Observe(duration.Seconds())
	if !ok {
		m.BatchesFailedTotal.Inc()
		return
	}
	m.BatchesSentTotal.Inc()
	m.TokensAddressedTotal.Add(float64(tokens))
}
