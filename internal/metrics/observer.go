package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// StatusOK is the status label of a successful operation.
const StatusOK = "ok"

// Classifier maps an operation error to a bounded status label.
type Classifier func(error) string

// Observer records latency and outcome of client operations and logs failures.
// A nil *Observer is valid and does nothing.
type Observer struct {
	logger     *zap.Logger
	classify   Classifier
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewObserver builds an Observer for a client subsystem ("client", "sdk").
// reg may be nil to disable metrics; collectors already present in reg are reused,
// so several clients can share one registry.
func NewObserver(subsystem string, logger *zap.Logger, reg prometheus.Registerer, classify Classifier) (*Observer, error) {
	if classify == nil {
		classify = func(error) string { return "error" }
	}
	o := &Observer{logger: logger, classify: classify}
	if reg == nil {
		return o, nil
	}

	o.operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paramsearch",
		Subsystem: subsystem,
		Name:      "operations_total",
		Help:      "Client operations by name and outcome.",
	}, []string{"operation", "status"})
	o.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "paramsearch",
		Subsystem: subsystem,
		Name:      "operation_duration_seconds",
		Help:      "Client operation duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	if err := registerOrReuse(reg, &o.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &o.duration); err != nil {
		return nil, err
	}
	return o, nil
}

// Operations exposes the outcome counter; nil when metrics are disabled.
func (o *Observer) Operations() *prometheus.CounterVec {
	if o == nil {
		return nil
	}
	return o.operations
}

// Observe records one finished operation started at start.
func (o *Observer) Observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := StatusOK
	if err != nil {
		status = o.classify(err)
	}

	if o.operations != nil {
		o.operations.WithLabelValues(op, status).Inc()
		o.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("Operation failed",
			zap.String("op", op),
			zap.String("status", status),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
		return
	}
	o.logger.Debug("Operation completed", zap.String("op", op), zap.Duration("duration", dur))
}

func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}
