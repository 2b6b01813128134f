// Package metrics exposes Prometheus collectors for the provider emulators.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds metrics configuration
type Config struct {
	Namespace        string
	HistogramBuckets []float64
}

// DefaultConfig returns the default metrics configuration
func DefaultConfig() Config {
	return Config{
		Namespace:        "shopabell_emulator",
		HistogramBuckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 15, 20, 30, 60},
	}
}

// Metrics holds the emulator collectors. A nil *Metrics is valid and records nothing,
// so emulators built without metrics need no special casing.
type Metrics struct {
	registry *prometheus.Registry

	settlementsTotal    *prometheus.CounterVec
	settlementLatency   prometheus.Histogram
	paymentLinksTotal   prometheus.Counter
	accountsTotal       prometheus.Counter
	shipmentsBooked     prometheus.Counter
	shipmentTransitions *prometheus.CounterVec
	webhookDeliveries   *prometheus.CounterVec
	webhookDuration     *prometheus.HistogramVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
	httpInFlight        prometheus.Gauge
}

// New creates collectors on a fresh registry, so several instances can coexist
func New(cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultConfig().Namespace
	}
	if len(cfg.HistogramBuckets) == 0 {
		cfg.HistogramBuckets = DefaultConfig().HistogramBuckets
	}

	m := &Metrics{registry: prometheus.NewRegistry()}

	m.settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "payment",
			Name:      "settlements_total",
			Help:      "Settlements resolved by the payment rail emulator, by outcome.",
		},
		[]string{"status"},
	)
	m.settlementLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "payment",
			Name:      "settlement_latency_seconds",
			Help:      "Simulated settlement latency.",
			Buckets:   cfg.HistogramBuckets,
		},
	)
	m.paymentLinksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "payment",
			Name:      "links_created_total",
			Help:      "Payment links issued.",
		},
	)
	m.accountsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "payment",
			Name:      "accounts_created_total",
			Help:      "Collection accounts issued.",
		},
	)
	m.shipmentsBooked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "courier",
			Name:      "orders_booked_total",
			Help:      "Shipment orders booked with the courier aggregator emulator.",
		},
	)
	m.shipmentTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "courier",
			Name:      "shipment_transitions_total",
			Help:      "Shipment state transitions, by target status.",
		},
		[]string{"status"},
	)
	m.webhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "webhook",
			Name:      "deliveries_total",
			Help:      "Webhook delivery attempts, by event and outcome.",
		},
		[]string{"event", "outcome"},
	)
	m.webhookDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "webhook",
			Name:      "delivery_duration_seconds",
			Help:      "Duration of outbound webhook requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"event"},
	)
	m.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by method, route and status code.",
		},
		[]string{"method", "route", "status"},
	)
	m.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	m.httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		},
	)

	m.registry.MustRegister(
		m.settlementsTotal,
		m.settlementLatency,
		m.paymentLinksTotal,
		m.accountsTotal,
		m.shipmentsBooked,
		m.shipmentTransitions,
		m.webhookDeliveries,
		m.webhookDuration,
		m.httpRequests,
		m.httpDuration,
		m.httpInFlight,
	)
	return m
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving this registry
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveSettlement records a resolved settlement
func (m *Metrics) ObserveSettlement(status string, latency time.Duration) {
	if m == nil {
		return
	}
	m.settlementsTotal.WithLabelValues(status).Inc()
	m.settlementLatency.Observe(latency.Seconds())
}

// PaymentLinkCreated records an issued payment link
func (m *Metrics) PaymentLinkCreated() {
	if m == nil {
		return
	}
	m.paymentLinksTotal.Inc()
}

// AccountCreated records an issued collection account
func (m *Metrics) AccountCreated() {
	if m == nil {
		return
	}
	m.accountsTotal.Inc()
}

// OrderBooked records a booked shipment order
func (m *Metrics) OrderBooked() {
	if m == nil {
		return
	}
	m.shipmentsBooked.Inc()
}

// ShipmentTransition records a shipment moving to status
func (m *Metrics) ShipmentTransition(status string) {
	if m == nil {
		return
	}
	m.shipmentTransitions.WithLabelValues(status).Inc()
}

// WebhookDelivered records one webhook attempt
func (m *Metrics) WebhookDelivered(event, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.webhookDeliveries.WithLabelValues(event, outcome).Inc()
	if duration > 0 {
		m.webhookDuration.WithLabelValues(event).Observe(duration.Seconds())
	}
}

// RequestStarted tracks an in-flight HTTP request until the returned func is called
func (m *Metrics) RequestStarted() func() {
	if m == nil {
		return func() {}
	}
	m.httpInFlight.Inc()
	return m.httpInFlight.Dec
}

// ObserveRequest records a served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
