package metrics

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedRoute labels requests no route matched, so arbitrary paths never
// become label values.
const unmatchedRoute = "unmatched"

type httpInstruments struct {
	requests metric.Int64Counter
	latency  metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter, namespace string) (*httpInstruments, error) {
	var (
		h                    httpInstruments
		errReq, errLat, errF error
	)
	h.requests, errReq = meter.Int64Counter(namespace+"_http_requests_total",
		metric.WithDescription("API requests by route and status"),
		metric.WithUnit("{request}"))
	h.latency, errLat = meter.Float64Histogram(namespace+"_http_request_duration_seconds",
		metric.WithDescription("API request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...))
	h.inFlight, errF = meter.Int64UpDownCounter(namespace+"_http_requests_in_flight",
		metric.WithDescription("API requests being served"),
		metric.WithUnit("{request}"))

	if err := errors.Join(errReq, errLat, errF); err != nil {
		return nil, err
	}
	return &h, nil
}

// HTTPMetricsMiddleware counts and times requests by method, route pattern
// and status. Entry ids stay out of labels because the route pattern, such
// as /v1/entries/:id, is used instead of the path. When the instruments
// cannot be created requests pass through unmeasured.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	h, err := newHTTPInstruments(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		h.inFlight.Add(ctx, 1)
		defer h.inFlight.Add(ctx, -1)

		c.Next()

		attrs := metric.WithAttributes(
			attribute.String("method", c.Request.Method),
			attribute.String("route", routeLabel(c.FullPath())),
			attribute.String("status", strconv.Itoa(c.Writer.Status())),
		)
		h.requests.Add(ctx, 1, attrs)
		h.latency.Record(ctx, time.Since(start).Seconds(), attrs)
	}
}

func routeLabel(pattern string) string {
	if pattern == "" {
		return unmatchedRoute
	}
	return pattern
}
