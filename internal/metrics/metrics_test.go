package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.OrdersCreated.Inc()
	a.OrdersCreated.Inc()
	b.OrdersRejected.Inc()

	assert.Equal(t, 2.0, testutil.ToFloat64(a.OrdersCreated))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.OrdersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.OrdersRejected))
}

func TestHandler_ExposesOrderMetrics(t *testing.T) {
	m := New()
	m.OrderFailures.Inc()
	m.PlacementDuration.Observe(0.02)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "catalog_order_failures_total 1")
	assert.Contains(t, body, "catalog_order_placement_seconds_count 1")
	assert.Contains(t, body, "catalog_orders_created_total 0")
	assert.Contains(t, body, "go_goroutines")
}
