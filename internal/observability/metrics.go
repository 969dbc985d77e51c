package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the SCIM-specific metric instruments.
type Metrics struct {
	parseDuration     metric.Float64Histogram
	parseCount        metric.Int64Counter
	parseErrors       metric.Int64Counter
	cacheEvents       metric.Int64Counter
	translateDuration metric.Float64Histogram
	dbQueryDuration   metric.Float64Histogram
	requestDuration   metric.Float64Histogram
	resultCount       metric.Int64Histogram
}

// NewMetrics creates a new Metrics instance with the given MeterProvider.
func NewMetrics(mp metric.MeterProvider) *Metrics {
	meter := mp.Meter(MeterName)
	m := &Metrics{}

	// Note: errors from meter instrument creation are unlikely in practice
	// and would only occur with invalid parameters. We use explicit checks
	// to satisfy the linter while continuing with partial metrics on error.
	var err error

	m.parseDuration, err = meter.Float64Histogram(
		"scim.parse.duration",
		metric.WithDescription("Duration of filter/path parses in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.parseDuration, _ = meter.Float64Histogram("scim.parse.duration")
	}

	m.parseCount, err = meter.Int64Counter(
		"scim.parse.count",
		metric.WithDescription("Total number of filter/path parses"),
		metric.WithUnit("{parse}"),
	)
	if err != nil {
		m.parseCount, _ = meter.Int64Counter("scim.parse.count")
	}

	m.parseErrors, err = meter.Int64Counter(
		"scim.parse.errors",
		metric.WithDescription("Total number of rejected filter/path expressions"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		m.parseErrors, _ = meter.Int64Counter("scim.parse.errors")
	}

	m.cacheEvents, err = meter.Int64Counter(
		"scim.cache.events",
		metric.WithDescription("Parse cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		m.cacheEvents, _ = meter.Int64Counter("scim.cache.events")
	}

	m.translateDuration, err = meter.Float64Histogram(
		"scim.translate.duration",
		metric.WithDescription("Duration of AST to SQL translations in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.translateDuration, _ = meter.Float64Histogram("scim.translate.duration")
	}

	m.dbQueryDuration, err = meter.Float64Histogram(
		"scim.db.query.duration",
		metric.WithDescription("Duration of database queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.dbQueryDuration, _ = meter.Float64Histogram("scim.db.query.duration")
	}

	m.requestDuration, err = meter.Float64Histogram(
		"scim.request.duration",
		metric.WithDescription("Duration of SCIM requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		m.requestDuration, _ = meter.Float64Histogram("scim.request.duration")
	}

	m.resultCount, err = meter.Int64Histogram(
		"scim.result.count",
		metric.WithDescription("Number of resources returned in list queries"),
		metric.WithUnit("{resource}"),
	)
	if err != nil {
		m.resultCount, _ = meter.Int64Histogram("scim.result.count")
	}

	return m
}

// RecordParse records one filter or path parse with its outcome.
func (m *Metrics) RecordParse(ctx context.Context, mode string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(ParseModeAttr(mode))
	m.parseDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	m.parseCount.Add(ctx, 1, attrs)
	if err != nil {
		m.parseErrors.Add(ctx, 1, attrs)
	}
}

// RecordCacheHit records a parse cache hit.
func (m *Metrics) RecordCacheHit(ctx context.Context) {
	m.cacheEvents.Add(ctx, 1, metric.WithAttributes(CacheOutcomeAttr(CacheHit)))
}

// RecordCacheMiss records a parse cache miss.
func (m *Metrics) RecordCacheMiss(ctx context.Context) {
	m.cacheEvents.Add(ctx, 1, metric.WithAttributes(CacheOutcomeAttr(CacheMiss)))
}

// RecordTranslate records one AST to SQL translation.
func (m *Metrics) RecordTranslate(ctx context.Context, dialect string, duration time.Duration, err error) {
	attrs := metric.WithAttributes(SQLDialectAttr(dialect))
	m.translateDuration.Record(ctx, float64(duration.Microseconds())/1000.0, attrs)
	if err != nil {
		m.parseErrors.Add(ctx, 1, metric.WithAttributes(
			SQLDialectAttr(dialect),
			OperationAttr(OpTranslate),
		))
	}
}

// RecordDBQuery records metrics for a database query.
func (m *Metrics) RecordDBQuery(ctx context.Context, operation string, duration time.Duration) {
	attrs := metric.WithAttributes(attribute.String("db.operation", operation))
	m.dbQueryDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordRequest records metrics for a completed SCIM request.
func (m *Metrics) RecordRequest(ctx context.Context, resourceType, operation string, statusCode int, duration time.Duration) {
	attrs := metric.WithAttributes(
		ResourceTypeAttr(resourceType),
		OperationAttr(operation),
		attribute.Int("http.status_code", statusCode),
	)
	m.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordResultCount records the number of resources returned in a list query.
func (m *Metrics) RecordResultCount(ctx context.Context, resourceType string, count int64) {
	attrs := metric.WithAttributes(ResourceTypeAttr(resourceType))
	m.resultCount.Record(ctx, count, attrs)
}
