package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters recorded by the lost-and-found workflows.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	itemsSubmitted prometheus.Counter
	itemsApproved  prometheus.Counter
	claimsFiled    prometheus.Counter
	claimsVerified *prometheus.CounterVec
	pointsAwarded  prometheus.Counter
	eventsConsumed *prometheus.CounterVec
}

// New registers the workflow metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	m := &Metrics{
		itemsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_items_submitted_total",
			Help: "Item reports submitted.",
		}),
		itemsApproved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_items_approved_total",
			Help: "Item reports approved for public listing.",
		}),
		claimsFiled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_claims_filed_total",
			Help: "Ownership claims filed.",
		}),
		claimsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lostfound_claims_verified_total",
			Help: "Claim verifications by action and outcome.",
		}, []string{"action", "outcome"}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lostfound_points_awarded_total",
			Help: "Good Samaritan points awarded to finders.",
		}),
		eventsConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lostfound_events_consumed_total",
			Help: "Domain events received by the audit consumer.",
		}, []string{"routing_key"}),
	}
	reg.MustRegister(m.itemsSubmitted, m.itemsApproved, m.claimsFiled, m.claimsVerified, m.pointsAwarded, m.eventsConsumed)
	return m
}

func (m *Metrics) IncItemsSubmitted() {
	if m == nil || m.itemsSubmitted == nil {
		return
	}
	m.itemsSubmitted.Inc()
}

func (m *Metrics) IncItemsApproved() {
	if m == nil || m.itemsApproved == nil {
		return
	}
	m.itemsApproved.Inc()
}

func (m *Metrics) IncClaimsFiled() {
	if m == nil || m.claimsFiled == nil {
		return
	}
	m.claimsFiled.Inc()
}

// ObserveVerification records one verification attempt. outcome is
// "success" or the error code that stopped it.
func (m *Metrics) ObserveVerification(action, outcome string) {
	if m == nil || m.claimsVerified == nil {
		return
	}
	m.claimsVerified.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

func (m *Metrics) AddPointsAwarded(points int) {
	if m == nil || m.pointsAwarded == nil || points <= 0 {
		return
	}
	m.pointsAwarded.Add(float64(points))
}

func (m *Metrics) IncEventsConsumed(routingKey string) {
	if m == nil || m.eventsConsumed == nil {
		return
	}
	m.eventsConsumed.WithLabelValues(normalizeLabel(routingKey)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
