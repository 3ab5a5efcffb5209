package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lostfound/internal/config"
	"lostfound/internal/database"
	"lostfound/internal/services"
	"lostfound/pkg/logger"
	"lostfound/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppPort:             ":0",
		AppEnv:              "test",
		DBDriver:            config.DriverSQLite,
		JWTSecret:           "main_test_secret",
		JWTTTL:              time.Hour,
		LeaderboardCacheTTL: 0,
		UploadDir:           t.TempDir(),
		UploadMaxBytes:      1 << 20,
		CORSOrigins:         "*",
	}
}

func TestNewAppServesHealthAndMetrics(t *testing.T) {
	db, err := database.OpenInMemory()
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	app, auth := newApp(testConfig(t), db, logger.Nop(), infrastructure{registry: registry, metrics: m})
	require.NotNil(t, auth)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Success bool `json:"success"`
		Data    struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.True(t, health.Success)
	assert.Equal(t, "healthy", health.Data.Status)
	assert.Equal(t, "ok", health.Data.Checks["database"])

	m.IncItemsSubmitted()
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "lostfound_items_submitted_total")
}

func TestAuditHandler(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	handle := auditHandler(logger.Nop(), m)

	body, err := json.Marshal(services.Event{Type: services.EventClaimApproved, ClaimID: "c1"})
	require.NoError(t, err)
	require.NoError(t, handle(amqp.Delivery{RoutingKey: services.EventClaimApproved, Body: body}))
	assert.Error(t, handle(amqp.Delivery{RoutingKey: "junk", Body: []byte("{")}))

	assert.Equal(t, 1, testutil.CollectAndCount(registry, "lostfound_events_consumed_total"))
}
