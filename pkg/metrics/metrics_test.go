package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncItemsSubmitted()
	m.IncItemsApproved()
	m.IncClaimsFiled()
	m.ObserveVerification("approve", "success")
	m.ObserveVerification("approve", "success")
	m.ObserveVerification("reject", "")
	m.AddPointsAwarded(10)
	m.AddPointsAwarded(-5)
	m.IncEventsConsumed("claim.approved")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.itemsApproved))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claimsFiled))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.claimsVerified.WithLabelValues("approve", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.claimsVerified.WithLabelValues("reject", "unknown")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.pointsAwarded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsConsumed.WithLabelValues("claim.approved")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.IncItemsSubmitted()
	m.ObserveVerification("approve", "success")
	m.AddPointsAwarded(10)

	empty := New(nil)
	empty.IncClaimsFiled()
	empty.IncEventsConsumed("x")
}
