package observability

import (
	"go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// NewNoopTracer creates a tracer that does nothing.
func NewNoopTracer() *Tracer {
	return &Tracer{
		tracer:      tracenoop.NewTracerProvider().Tracer(""),
		serviceName: "",
	}
}

// NewNoopMetrics creates metrics that do nothing.
func NewNoopMetrics() *Metrics {
	meter := noop.NewMeterProvider().Meter("")
	m := &Metrics{}

	// Note: noop meter never returns errors, but we must check them to satisfy the linter.
	m.parseDuration, _ = meter.Float64Histogram("scim.parse.duration")         //nolint:errcheck
	m.parseCount, _ = meter.Int64Counter("scim.parse.count")                   //nolint:errcheck
	m.parseErrors, _ = meter.Int64Counter("scim.parse.errors")                 //nolint:errcheck
	m.cacheEvents, _ = meter.Int64Counter("scim.cache.events")                 //nolint:errcheck
	m.translateDuration, _ = meter.Float64Histogram("scim.translate.duration") //nolint:errcheck
	m.dbQueryDuration, _ = meter.Float64Histogram("scim.db.query.duration")    //nolint:errcheck
	m.requestDuration, _ = meter.Float64Histogram("scim.request.duration")     //nolint:errcheck
	m.resultCount, _ = meter.Int64Histogram("scim.result.count")               //nolint:errcheck

	return m
}
