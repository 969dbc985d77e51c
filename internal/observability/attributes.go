// Package observability provides OpenTelemetry-based instrumentation for the
// SCIM query library.
//
// It supports distributed tracing, metrics collection, and enhanced structured logging.
//
// All observability features are opt-in. When not configured, no-op implementations
// are used with zero performance overhead.
package observability

import "go.opentelemetry.io/otel/attribute"

// Instrumentation identity constants
const (
	// TracerName is the instrumentation name for tracing.
	TracerName = "github.com/nlstn/go-scim"
	// MeterName is the instrumentation name for metrics.
	MeterName = "github.com/nlstn/go-scim"
)

// SCIM semantic attribute keys following OpenTelemetry conventions.
const (
	// Parse attributes
	AttrParseMode   = "scim.parse.mode"
	AttrInputLength = "scim.parse.input_length"
	AttrOperation   = "scim.operation"

	// Query parameter attributes
	AttrQueryFilter     = "scim.query.filter"
	AttrQuerySortBy     = "scim.query.sort_by"
	AttrQuerySortOrder  = "scim.query.sort_order"
	AttrQueryStartIndex = "scim.query.start_index"
	AttrQueryCount      = "scim.query.count"

	// Translation attributes
	AttrResourceType = "scim.resource_type"
	AttrSQLDialect   = "scim.sql.dialect"

	// Cache attributes
	AttrCacheOutcome = "scim.cache.outcome"

	// Result attributes
	AttrResultCount  = "scim.result.count"
	AttrTotalResults = "scim.total_results"

	// Error attributes
	AttrErrorType   = "scim.error.type"
	AttrErrorDetail = "scim.error.detail"
)

// Operation types for the scim.operation attribute.
const (
	OpParseFilter = "parse_filter"
	OpParsePath   = "parse_path"
	OpListRequest = "list_request"
	OpTranslate   = "translate"
	OpList        = "list"
)

// Cache outcomes for the scim.cache.outcome attribute.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Log field keys for structured logging with trace context.
const (
	LogFieldResourceType = "scim.resource_type"
	LogFieldOperation    = "scim.operation"
	LogFieldFilter       = "scim.filter"
	LogFieldTraceID      = "trace_id"
	LogFieldSpanID       = "span_id"
	LogFieldDuration     = "duration_ms"
	LogFieldResultCount  = "result_count"
	LogFieldError        = "error"
)

// ParseModeAttr creates an attribute for the parse mode (filter or path).
func ParseModeAttr(mode string) attribute.KeyValue {
	return attribute.String(AttrParseMode, mode)
}

// InputLengthAttr creates an attribute for the parsed input length.
func InputLengthAttr(length int) attribute.KeyValue {
	return attribute.Int(AttrInputLength, length)
}

// OperationAttr creates an attribute for the operation type.
func OperationAttr(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

// ResourceTypeAttr creates an attribute for the SCIM resource type name.
func ResourceTypeAttr(name string) attribute.KeyValue {
	return attribute.String(AttrResourceType, name)
}

// SQLDialectAttr creates an attribute for the SQL dialect in use.
func SQLDialectAttr(dialect string) attribute.KeyValue {
	return attribute.String(AttrSQLDialect, dialect)
}

// CacheOutcomeAttr creates an attribute for a parse cache lookup outcome.
func CacheOutcomeAttr(outcome string) attribute.KeyValue {
	return attribute.String(AttrCacheOutcome, outcome)
}

// QueryFilterAttr creates an attribute for the filter expression.
func QueryFilterAttr(filter string) attribute.KeyValue {
	return attribute.String(AttrQueryFilter, filter)
}

// QuerySortByAttr creates an attribute for the sortBy expression.
func QuerySortByAttr(sortBy string) attribute.KeyValue {
	return attribute.String(AttrQuerySortBy, sortBy)
}

// QueryStartIndexAttr creates an attribute for the startIndex value.
func QueryStartIndexAttr(startIndex int) attribute.KeyValue {
	return attribute.Int(AttrQueryStartIndex, startIndex)
}

// QueryCountAttr creates an attribute for the count value.
func QueryCountAttr(count int) attribute.KeyValue {
	return attribute.Int(AttrQueryCount, count)
}

// ResultCountAttr creates an attribute for the result count.
func ResultCountAttr(count int64) attribute.KeyValue {
	return attribute.Int64(AttrResultCount, count)
}

// ErrorTypeAttr creates an attribute for the SCIM error type (scimType).
func ErrorTypeAttr(errorType string) attribute.KeyValue {
	return attribute.String(AttrErrorType, errorType)
}
