// Package metrics exposes the Prometheus instrumentation shared by the
// collection and payout engines.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the settlement counters and histograms on a private
// registry.
type Metrics struct {
	registry *prometheus.Registry

	collectionsReceived    prometheus.Counter
	collectionsCredited    prometheus.Counter
	collectionsQuarantined prometheus.Counter
	collectionsDuplicate   prometheus.Counter
	riskScores             prometheus.Histogram
	webhookAckSeconds      prometheus.Histogram

	payoutsDispatched *prometheus.CounterVec
	payoutsConfirmed  prometheus.Counter
	payoutsFailed     prometheus.Counter
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	return &Metrics{
		registry: registry,
		collectionsReceived: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "collections_received_total",
			Help: "Inbound collection webhooks received",
		}),
		collectionsCredited: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "collections_credited_total",
			Help: "Inbound collections credited to a wallet",
		}),
		collectionsQuarantined: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "collections_quarantined_total",
			Help: "Inbound collections held for manual review",
		}),
		collectionsDuplicate: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "collections_duplicate_total",
			Help: "Inbound collections ignored as receipt replays",
		}),
		riskScores: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "collection_risk_score",
			Help:    "Distribution of inbound collection risk scores",
			Buckets: []float64{0, 20, 40, 50, 60, 80, 100, 150},
		}),
		webhookAckSeconds: promauto.With(registry).NewHistogram(prometheus.HistogramOpts{
			Name:    "webhook_ack_duration_seconds",
			Help:    "Time from webhook receipt to acknowledgement",
			Buckets: prometheus.DefBuckets,
		}),
		payoutsDispatched: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "payout_dispatches_total",
			Help: "Payout item dispatch attempts by outcome",
		}, []string{"outcome"}),
		payoutsConfirmed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "payout_items_confirmed_total",
			Help: "Payout items confirmed by the provider",
		}),
		payoutsFailed: promauto.With(registry).NewCounter(prometheus.CounterOpts{
			Name: "payout_items_failed_total",
			Help: "Payout items terminally failed",
		}),
	}
}

func (m *Metrics) CollectionReceived()    { m.collectionsReceived.Inc() }
func (m *Metrics) CollectionCredited()    { m.collectionsCredited.Inc() }
func (m *Metrics) CollectionQuarantined() { m.collectionsQuarantined.Inc() }
func (m *Metrics) CollectionDuplicate()   { m.collectionsDuplicate.Inc() }

func (m *Metrics) ObserveRiskScore(score int) { m.riskScores.Observe(float64(score)) }

func (m *Metrics) ObserveWebhookAck(seconds float64) { m.webhookAckSeconds.Observe(seconds) }

// RecordDispatch records one dispatch attempt outcome: sent, retried or
// failed.
func (m *Metrics) RecordDispatch(outcome string) {
	m.payoutsDispatched.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PayoutConfirmed() { m.payoutsConfirmed.Inc() }
func (m *Metrics) PayoutFailed()    { m.payoutsFailed.Inc() }

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
