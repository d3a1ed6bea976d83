package prometheus

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/MohammedAshfaquem/smatdine-backend/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	HttpRequestsTotal       *prometheus.CounterVec
	HttpRequestDuration     *prometheus.HistogramVec
	HttpStatusCategoryTotal *prometheus.CounterVec

	// Authentication metrics
	AuthAttemptsCounter prometheus.Counter
	AuthErrorsCounter   prometheus.Counter

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Order metrics
	OrdersPlacedCounter        prometheus.Counter
	OrderTransitionsCounter    *prometheus.CounterVec
	StockRejectionsCounter     *prometheus.CounterVec
	TransactionConflictCounter prometheus.Counter

	// Inventory metrics
	MenuItemStockGauge *prometheus.GaugeVec
	LowStockCounter    *prometheus.CounterVec

	// Table metrics
	TableClearsCounter prometheus.Counter

	// Custom dish metrics
	CustomDishesCreatedCounter prometheus.Counter
	ImageGenerationCounter     *prometheus.CounterVec

	initOnce sync.Once
)

// InitMetrics initializes Prometheus metrics with configuration. Later calls are no-ops.
func InitMetrics(config *config.Config) {
	initOnce.Do(func() {
		initMetrics(config.Metrics.Prefix)
	})
}

func initMetrics(prefix string) {
	// HTTP request metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HttpStatusCategoryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_status_category_total",
			Help: "Total number of responses by status category (2xx, 4xx, 5xx)",
		},
		[]string{"category", "method", "path"},
	)

	// Authentication metrics
	AuthAttemptsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_attempts_total",
			Help: "Total number of staff authentication attempts",
		},
	)

	AuthErrorsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of rejected staff tokens",
		},
	)

	// Database operation metrics
	DbOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Order metrics
	OrdersPlacedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_orders_placed_total",
			Help: "Total number of orders placed",
		},
	)

	OrderTransitionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_order_transitions_total",
			Help: "Total number of order status transitions",
		},
		[]string{"from", "to"},
	)

	StockRejectionsCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_stock_rejections_total",
			Help: "Total number of cart or order requests rejected for lack of stock",
		},
		[]string{"stage"},
	)

	TransactionConflictCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_transaction_conflicts_total",
			Help: "Total number of transactions aborted by a concurrent writer",
		},
	)

	// Inventory metrics
	MenuItemStockGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_menu_item_stock",
			Help: "Current stock level for menu items",
		},
		[]string{"menu_item_id", "menu_item_name"},
	)

	LowStockCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_low_stock_events_total",
			Help: "Total number of times a menu item dropped to or below its minimum stock",
		},
		[]string{"menu_item_id"},
	)

	// Table metrics
	TableClearsCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_table_clears_total",
			Help: "Total number of tables cleared and archived",
		},
	)

	// Custom dish metrics
	CustomDishesCreatedCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_custom_dishes_created_total",
			Help: "Total number of custom dishes created",
		},
	)

	ImageGenerationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_image_generation_total",
			Help: "Total number of custom dish image generations by outcome",
		},
		[]string{"outcome"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if DbOperationDuration == nil {
			return
		}
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordHTTPRequest records a finished HTTP request
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if HttpRequestsTotal == nil {
		return
	}
	statusStr := strconv.Itoa(status)
	HttpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	HttpRequestDuration.WithLabelValues(method, path, statusStr).Observe(duration.Seconds())

	category := ""
	switch {
	case status >= 200 && status < 300:
		category = "2xx"
	case status >= 400 && status < 500:
		category = "4xx"
	case status >= 500 && status < 600:
		category = "5xx"
	}
	if category != "" {
		HttpStatusCategoryTotal.WithLabelValues(category, method, path).Inc()
	}
}

// RecordAuthAttempt counts a staff token check
func RecordAuthAttempt(ok bool) {
	if AuthAttemptsCounter == nil {
		return
	}
	AuthAttemptsCounter.Inc()
	if !ok {
		AuthErrorsCounter.Inc()
	}
}

// RecordOrderPlaced increments the placed orders counter
func RecordOrderPlaced() {
	if OrdersPlacedCounter != nil {
		OrdersPlacedCounter.Inc()
	}
}

// RecordOrderTransition increments the counter for an order status change
func RecordOrderTransition(from, to string) {
	if OrderTransitionsCounter != nil {
		OrderTransitionsCounter.WithLabelValues(from, to).Inc()
	}
}

// RecordStockRejection counts a request refused for lack of stock, stage is "cart" or "order"
func RecordStockRejection(stage string) {
	if StockRejectionsCounter != nil {
		StockRejectionsCounter.WithLabelValues(stage).Inc()
	}
}

// RecordTransactionConflict counts a transaction lost to a concurrent writer
func RecordTransactionConflict() {
	if TransactionConflictCounter != nil {
		TransactionConflictCounter.Inc()
	}
}

// UpdateMenuItemStock updates the gauge for menu item stock
func UpdateMenuItemStock(menuItemID uint, name string, stock int) {
	if MenuItemStockGauge != nil {
		MenuItemStockGauge.WithLabelValues(strconv.FormatUint(uint64(menuItemID), 10), name).Set(float64(stock))
	}
}

// RecordLowStock counts a menu item reaching its minimum stock
func RecordLowStock(menuItemID uint) {
	if LowStockCounter != nil {
		LowStockCounter.WithLabelValues(strconv.FormatUint(uint64(menuItemID), 10)).Inc()
	}
}

// RecordTableCleared increments the table clear counter
func RecordTableCleared() {
	if TableClearsCounter != nil {
		TableClearsCounter.Inc()
	}
}

// RecordCustomDishCreated increments the custom dish counter
func RecordCustomDishCreated() {
	if CustomDishesCreatedCounter != nil {
		CustomDishesCreatedCounter.Inc()
	}
}

// RecordImageGeneration counts an image generation outcome ("done" or "failed")
func RecordImageGeneration(outcome string) {
	if ImageGenerationCounter != nil {
		ImageGenerationCounter.WithLabelValues(outcome).Inc()
	}
}

// Handler returns an HTTP handler for exposing Prometheus metrics
func Handler() http.Handler {
	return promhttp.Handler()
}
