package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"stakehire/core/events"
	"stakehire/native/escrow"
	"stakehire/native/marketplace"
)

type marketMetrics struct {
	jobsPosted   prometheus.Counter
	jobsExpired  prometheus.Counter
	applications prometheus.Counter
	reviews      *prometheus.CounterVec
	hires        prometheus.Counter
	refunds      prometheus.Counter
	deposits     *prometheus.CounterVec
}

var (
	marketOnce     sync.Once
	marketRegistry *marketMetrics
)

// Market returns the lazily-initialised metrics registry tracking marketplace
// and escrow activity.
func Market() *marketMetrics {
	marketOnce.Do(func() {
		marketRegistry = &marketMetrics{
			jobsPosted: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "stakehire",
				Subsystem: "marketplace",
				Name:      "jobs_posted_total",
				Help:      "Count of job postings created.",
			}),
			jobsExpired: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "stakehire",
				Subsystem: "marketplace",
				Name:      "jobs_expired_total",
				Help:      "Count of postings finalized after their deadline.",
			}),
			applications: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "stakehire",
				Subsystem: "marketplace",
				Name:      "applications_total",
				Help:      "Count of stake-backed applications submitted.",
			}),
			reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stakehire",
				Subsystem: "marketplace",
				Name:      "reviews_total",
				Help:      "Count of application reviews segmented by outcome.",
			}, []string{"outcome"}),
			hires: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "stakehire",
				Subsystem: "marketplace",
				Name:      "hires_total",
				Help:      "Count of filled postings.",
			}),
			refunds: prometheus.NewCounter(prometheus.CounterOpts{
				Namespace: "stakehire",
				Subsystem: "marketplace",
				Name:      "application_refunds_total",
				Help:      "Count of force-refunded applications.",
			}),
			deposits: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: "stakehire",
				Subsystem: "escrow",
				Name:      "deposit_transitions_total",
				Help:      "Count of escrow deposit transitions segmented by type.",
			}, []string{"transition"}),
		}
		prometheus.MustRegister(
			marketRegistry.jobsPosted,
			marketRegistry.jobsExpired,
			marketRegistry.applications,
			marketRegistry.reviews,
			marketRegistry.hires,
			marketRegistry.refunds,
			marketRegistry.deposits,
		)
	})
	return marketRegistry
}

// MetricsEmitter feeds the prometheus registry from module events. Wire it
// behind a FanoutEmitter alongside the log emitter.
type MetricsEmitter struct {
	metrics *marketMetrics
}

// NewMetricsEmitter constructs an emitter bound to the shared registry.
func NewMetricsEmitter() *MetricsEmitter {
	return &MetricsEmitter{metrics: Market()}
}

// Emit implements events.Emitter.
func (m *MetricsEmitter) Emit(evt events.Event) {
	if m == nil || m.metrics == nil || evt == nil {
		return
	}
	switch evt.EventType() {
	case marketplace.EventTypeJobPosted:
		m.metrics.jobsPosted.Inc()
	case marketplace.EventTypeJobExpired:
		m.metrics.jobsExpired.Inc()
	case marketplace.EventTypeApplicationSubmitted:
		m.metrics.applications.Inc()
	case marketplace.EventTypeApplicationReviewed:
		m.metrics.reviews.WithLabelValues("approved").Inc()
	case marketplace.EventTypeApplicationRejected:
		m.metrics.reviews.WithLabelValues("rejected").Inc()
	case marketplace.EventTypeCandidateHired:
		m.metrics.hires.Inc()
	case marketplace.EventTypeApplicationRefunded:
		m.metrics.refunds.Inc()
	case escrow.EventTypeDepositCreated:
		m.metrics.deposits.WithLabelValues("created").Inc()
	case escrow.EventTypeDepositReleased:
		m.metrics.deposits.WithLabelValues("released").Inc()
	case escrow.EventTypeDepositPartial:
		m.metrics.deposits.WithLabelValues("partial_released").Inc()
	case escrow.EventTypeDepositRefunded:
		m.metrics.deposits.WithLabelValues("refunded").Inc()
	case escrow.EventTypeEmergencyWithdraw:
		m.metrics.deposits.WithLabelValues("emergency").Inc()
	}
}
