package observability

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer wraps an OpenTelemetry tracer with SCIM-specific span creation methods.
type Tracer struct {
	tracer      trace.Tracer
	serviceName string
}

// NewTracer creates a new Tracer using the given TracerProvider.
func NewTracer(tp trace.TracerProvider, serviceName string) *Tracer {
	return &Tracer{
		tracer:      tp.Tracer(TracerName),
		serviceName: serviceName,
	}
}

// StartSpan starts a new span with the given name and attributes.
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}

// StartParse starts a span covering one filter or path parse.
func (t *Tracer) StartParse(ctx context.Context, mode string, inputLength int) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "scim.parse", trace.WithAttributes(
		ParseModeAttr(mode),
		InputLengthAttr(inputLength),
	))
}

// StartListRequest starts a span covering the parsing of a full set of
// list/query parameters (filter, sortBy, paging).
func (t *Tracer) StartListRequest(ctx context.Context) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "scim.list_request", trace.WithAttributes(
		OperationAttr(OpListRequest),
	))
}

// StartTranslate starts a span covering the AST to SQL translation for one
// resource type.
func (t *Tracer) StartTranslate(ctx context.Context, resourceType, dialect string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "scim.translate", trace.WithAttributes(
		OperationAttr(OpTranslate),
		ResourceTypeAttr(resourceType),
		SQLDialectAttr(dialect),
	))
}

// StartList starts a span for serving one SCIM list query.
func (t *Tracer) StartList(ctx context.Context, resourceType string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "scim.list", trace.WithAttributes(
		OperationAttr(OpList),
		ResourceTypeAttr(resourceType),
	))
}

// StartRequest starts a span for an HTTP request.
func (t *Tracer) StartRequest(ctx context.Context, r *http.Request) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "scim.request", trace.WithAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("http.url", r.URL.String()),
		attribute.String("http.route", r.URL.Path),
	))
}

// StartDBQuery starts a span for a database query.
func (t *Tracer) StartDBQuery(ctx context.Context, operation string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "db.query", trace.WithAttributes(
		attribute.String("db.operation", operation),
	))
}

// SetHTTPStatus sets the HTTP status code on the current span.
func (t *Tracer) SetHTTPStatus(ctx context.Context, statusCode int) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.Int("http.status_code", statusCode))
	if statusCode >= 400 {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	}
}

// RecordError records an error on the span.
func (t *Tracer) RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// AddListOptions adds list parameter attributes to a span. The filter and
// sortBy texts are only attached when the caller has opted into raw filter
// recording (Config.FilterTextEnabled).
func (t *Tracer) AddListOptions(span trace.Span, filter, sortBy, sortOrder string, startIndex, count int) {
	var attrs []attribute.KeyValue
	if filter != "" {
		attrs = append(attrs, QueryFilterAttr(filter))
	}
	if sortBy != "" {
		attrs = append(attrs, QuerySortByAttr(sortBy))
	}
	if sortOrder != "" {
		attrs = append(attrs, attribute.String(AttrQuerySortOrder, sortOrder))
	}
	if startIndex > 0 {
		attrs = append(attrs, QueryStartIndexAttr(startIndex))
	}
	if count >= 0 {
		attrs = append(attrs, QueryCountAttr(count))
	}
	if len(attrs) > 0 {
		span.SetAttributes(attrs...)
	}
}

// LoggerWithTrace returns a logger enriched with trace context.
func LoggerWithTrace(ctx context.Context, logger *slog.Logger) *slog.Logger {
	span := trace.SpanFromContext(ctx)
	if !span.SpanContext().IsValid() {
		return logger
	}
	return logger.With(
		slog.String(LogFieldTraceID, span.SpanContext().TraceID().String()),
		slog.String(LogFieldSpanID, span.SpanContext().SpanID().String()),
	)
}
