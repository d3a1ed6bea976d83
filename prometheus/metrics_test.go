package prometheus

import (
	"testing"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/pkg/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInitMetricsIsIdempotent(t *testing.T) {
	cfg := &config.Config{Metrics: config.MetricsConfig{Prefix: "smartdine_test"}}
	InitMetrics(cfg)
	assert.NotPanics(t, func() { InitMetrics(cfg) })

	RecordOrderPlaced()
	RecordOrderPlaced()
	assert.Equal(t, 2.0, testutil.ToFloat64(OrdersPlacedCounter))

	RecordOrderTransition("pending", "preparing")
	assert.Equal(t, 1.0, testutil.ToFloat64(OrderTransitionsCounter.WithLabelValues("pending", "preparing")))

	UpdateMenuItemStock(4, "Lemonade", 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(MenuItemStockGauge.WithLabelValues("4", "Lemonade")))

	RecordHTTPRequest("GET", "/menu", 404, 5*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(HttpStatusCategoryTotal.WithLabelValues("4xx", "GET", "/menu")))

	TrackDBOperation("place_order")(time.Now())
}
