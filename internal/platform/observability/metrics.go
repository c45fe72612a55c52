package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const meterNamespace = "github.com/otop-atlas/api/internal/platform/observability"

// BrowseMetrics records instrumentation for the filter/render pipeline.
type BrowseMetrics struct {
	recomputes        metric.Int64Counter
	recomputesEnabled bool
	latency           metric.Float64Histogram
	latencyEnabled    bool
}

// NewBrowseMetrics registers the browse pipeline instruments against the
// global meter provider. Registration failures are logged and disable the
// affected instrument rather than failing construction.
func NewBrowseMetrics(logger *zap.Logger) *BrowseMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	meter := otel.GetMeterProvider().Meter(meterNamespace)

	recomputes, recomputesErr := meter.Int64Counter(
		"browse.recompute.count",
		metric.WithDescription("Number of full filter recomputations"),
	)
	if recomputesErr != nil {
		logger.Warn("observability: unable to register recompute counter", zap.Error(recomputesErr))
	}

	latency, latencyErr := meter.Float64Histogram(
		"browse.filter.latency",
		metric.WithUnit("ms"),
		metric.WithDescription("Latency in milliseconds of one filter pass over the snapshot"),
	)
	if latencyErr != nil {
		logger.Warn("observability: unable to register filter latency histogram", zap.Error(latencyErr))
	}

	return &BrowseMetrics{
		recomputes:        recomputes,
		recomputesEnabled: recomputesErr == nil,
		latency:           latency,
		latencyEnabled:    latencyErr == nil,
	}
}

// RecordRecompute counts one full recomputation, attributed by trigger
// ("search", "category", "province", "level", "initial").
func (m *BrowseMetrics) RecordRecompute(ctx context.Context, trigger string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("trigger", trigger))
	if m.recomputesEnabled {
		m.recomputes.Add(ctx, 1, attrs)
	}
	if m.latencyEnabled {
		m.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
	}
}
