package lanesight

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// observer records per-call logs and, when a registry is supplied, call
// counters and latency histograms for the client's public operations.
// A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}

	o.calls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "lanesight",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "Total SDK operations by type and status.",
	}, []string{"operation", "status"})
	o.latency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "lanesight",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK operation duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	if err := registerOrReuse(reg, &o.calls); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &o.latency); err != nil {
		return nil, err
	}
	return o, nil
}

// registerOrReuse registers a collector, adopting the already-registered one
// when the registry has seen an identical collector before.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		existing, ok := are.ExistingCollector.(T)
		if !ok {
			return fmt.Errorf("lanesight: metric already registered with incompatible type: %T", are.ExistingCollector)
		}
		*c = existing
		return nil
	}
	return fmt.Errorf("lanesight: register metric: %w", err)
}

// track finalizes one operation: a status-labeled count, the elapsed
// latency, and a log line at a level matching the outcome.
func (o *observer) track(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)

	if o.calls != nil {
		status := "ok"
		if err != nil {
			status = "error"
		}
		o.calls.WithLabelValues(op, status).Inc()
		o.latency.WithLabelValues(op).Observe(elapsed.Seconds())
	}

	switch {
	case o.logger == nil:
	case err != nil:
		o.logger.Warn("operation failed",
			"op", op,
			"duration", elapsed,
			"error", err,
		)
	default:
		o.logger.Debug("operation completed",
			"op", op,
			"duration", elapsed,
		)
	}
}
