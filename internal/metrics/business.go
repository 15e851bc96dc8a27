package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// BusinessMetrics records entry lifecycle metrics.
type BusinessMetrics interface {
	// RecordOperation counts one operation, e.g. domain "entries", operation
	// "entry_list", status "success" or "error".
	RecordOperation(ctx context.Context, domain, operation, status string)

	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(ctx context.Context, domain, operation string, duration time.Duration, status string)

	// RecordEntriesMigrated adds count to the migrated-entries counter for a
	// trigger ("sweep", "request" or "local"). Zero counts are ignored.
	RecordEntriesMigrated(ctx context.Context, trigger string, count int)
}

type businessMetrics struct {
	operations metric.Int64Counter
	durations  metric.Float64Histogram
	migrated   metric.Int64Counter
}

// Migrations finish in milliseconds, a sweep over a large backlog in seconds.
var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// NewBusinessMetrics registers the entry lifecycle instruments on meterProvider,
// each name prefixed with namespace.
func NewBusinessMetrics(meterProvider metric.MeterProvider, namespace string) (BusinessMetrics, error) {
	meter := meterProvider.Meter(namespace)
	name := func(suffix string) string { return namespace + "_" + suffix }

	var (
		b    businessMetrics
		errs []error
		err  error
	)

	b.operations, err = meter.Int64Counter(name("operations_total"),
		metric.WithDescription("Entry operations by outcome"),
		metric.WithUnit("{operation}"))
	errs = append(errs, err)

	b.durations, err = meter.Float64Histogram(name("operation_duration_seconds"),
		metric.WithDescription("Entry operation latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	errs = append(errs, err)

	b.migrated, err = meter.Int64Counter(name("entries_migrated_total"),
		metric.WithDescription("Active entries moved into encrypted storage"),
		metric.WithUnit("{entry}"))
	errs = append(errs, err)

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	return &b, nil
}

func operationAttrs(domain, operation, status string) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("domain", domain),
		attribute.String("operation", operation),
		attribute.String("status", status),
	)
}

func (b *businessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	b.operations.Add(ctx, 1, operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	b.durations.Record(ctx, duration.Seconds(), operationAttrs(domain, operation, status))
}

func (b *businessMetrics) RecordEntriesMigrated(ctx context.Context, trigger string, count int) {
	if count > 0 {
		b.migrated.Add(ctx, int64(count), metric.WithAttributes(attribute.String("trigger", trigger)))
	}
}

// NoOpBusinessMetrics discards everything. It stands in when metrics are disabled.
type NoOpBusinessMetrics struct{}

func NewNoOpBusinessMetrics() BusinessMetrics {
	return NoOpBusinessMetrics{}
}

func (NoOpBusinessMetrics) RecordOperation(context.Context, string, string, string) {}

func (NoOpBusinessMetrics) RecordDuration(context.Context, string, string, time.Duration, string) {}

func (NoOpBusinessMetrics) RecordEntriesMigrated(context.Context, string, int) {}
