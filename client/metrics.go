package client

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// cacheMetrics counts how reads are served.
type cacheMetrics struct {
	hits          metric.Int64Counter
	misses        metric.Int64Counter
	invalidations metric.Int64Counter
	attrs         metric.MeasurementOption
}

func newCacheMetrics(mp metric.MeterProvider, resourceType string) (*cacheMetrics, error) {
	if mp == nil {
		mp = noop.NewMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	hits, err := meter.Int64Counter(
		"masomo.client.cache.hits",
		metric.WithDescription("Reads served from the cache without a request."),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating hits counter")
	}
	misses, err := meter.Int64Counter(
		"masomo.client.cache.misses",
		metric.WithDescription("Requests issued by reads and refetches."),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating misses counter")
	}
	invalidations, err := meter.Int64Counter(
		"masomo.client.cache.invalidations",
		metric.WithDescription("Cached queries marked stale by mutations."),
	)
	if err != nil {
		return nil, errors.Wrap(err, "creating invalidations counter")
	}

	return &cacheMetrics{
		hits:          hits,
		misses:        misses,
		invalidations: invalidations,
		attrs:         metric.WithAttributes(attribute.String("resource", resourceType)),
	}, nil
}

func (m *cacheMetrics) hit(ctx context.Context)  { m.hits.Add(ctx, 1, m.attrs) }
func (m *cacheMetrics) miss(ctx context.Context) { m.misses.Add(ctx, 1, m.attrs) }
func (m *cacheMetrics) invalidated(ctx context.Context, n int) {
	if n > 0 {
		m.invalidations.Add(ctx, int64(n), m.attrs)
	}
}
