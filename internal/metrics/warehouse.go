package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Warehouse Prometheus metrics.
var (
	WarehouseQueryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lanesight",
			Name:      "warehouse_query_duration_seconds",
			Help:      "Warehouse query round-trip duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	WarehouseQueryErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lanesight",
			Name:      "warehouse_query_errors_total",
			Help:      "Total failed warehouse queries",
		},
	)

	WarehouseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lanesight",
			Name:      "warehouse_cache_total",
			Help:      "Warehouse result cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var warehouseMetricsRegistered bool

// RegisterWarehouseMetrics registers warehouse metrics. Must be called once from main.
func RegisterWarehouseMetrics() {
	if warehouseMetricsRegistered {
		return
	}
	prometheus.MustRegister(WarehouseQueryDuration)
	prometheus.MustRegister(WarehouseQueryErrorsTotal)
	prometheus.MustRegister(WarehouseCacheTotal)
	warehouseMetricsRegistered = true
}

// ObserveWarehouseQuery records one query round-trip.
func ObserveWarehouseQuery(d time.Duration, err error) {
	WarehouseQueryDuration.Observe(d.Seconds())
	if err != nil {
		WarehouseQueryErrorsTotal.Inc()
	}
}
