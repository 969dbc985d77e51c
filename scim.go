// Package scim parses SCIM filter and path expressions (RFC 7644 section
// 3.4.2.2) into syntax trees, parses the list/query protocol parameters
// that carry them, and translates the trees into database conditions.
// The AST node types live in the filter subpackage; this package is the
// façade most callers use.
package scim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nlstn/go-scim/filter"
	"github.com/nlstn/go-scim/internal/observability"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// The two grammars are fixed, and a filter.Parser is immutable and safe
// for concurrent use, so one package-level instance serves each mode.
var (
	filterParser = filter.New(filter.ModeFilter)
	pathParser   = filter.New(filter.ModePath)
)

var (
	logger = slog.Default()
	obs    *observability.Config
)

// SetLogger sets a custom logger for the package.
// If not called, slog.Default() is used. Intended to be called during
// program initialization, before the parse functions are in use.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	logger = l
}

// EnableObservability wires OpenTelemetry instrumentation into the
// package-level parse functions: parse duration and error metrics, and
// cache hit/miss counters for CachedParseFilter. A nil provider leaves
// the corresponding signal on its no-op implementation. Intended to be
// called during program initialization.
func EnableObservability(tp trace.TracerProvider, mp metric.MeterProvider) error {
	cfg := observability.NewConfig(
		observability.WithTracerProvider(tp),
		observability.WithMeterProvider(mp),
	)
	if err := cfg.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	obs = cfg
	return nil
}

// ParseFilter parses a SCIM filter expression into its syntax tree.
// Empty or whitespace-only input returns (nil, nil): the absence of a
// filter is not an error. Failures return a *ScimError with scimType
// "invalidFilter" wrapping the underlying filter package error, so both
// errors.Is(err, ErrInvalidFilter) and errors.Is(err, filter.ErrSyntax)
// work.
func ParseFilter(input string) (filter.Node, error) {
	start := time.Now()
	node, err := filterParser.Parse(input)
	if err == nil {
		err = rejectBarePaths(node)
	}
	recordParse("filter", time.Since(start), err)
	if err != nil {
		return nil, &ScimError{
			Status: http.StatusBadRequest,
			Type:   ScimTypeInvalidFilter,
			Detail: "invalid filter",
			Err:    err,
		}
	}
	return node, nil
}

// ParsePath parses a SCIM path expression (RFC 7644 section 3.5.2), as
// used by PATCH operations to address an attribute. The result is a
// *filter.AttributePath for plain paths or a *filter.ValuePath for
// bracketed selections, which may carry a trailing sub-attribute as in
// addresses[type eq "work"].streetAddress. Empty input is an error: a
// path must name a target. Failures return a *ScimError with scimType
// "invalidPath".
func ParsePath(input string) (filter.Node, error) {
	start := time.Now()
	node, err := pathParser.Parse(input)
	if err == nil {
		err = checkPathResult(node)
	}
	recordParse("path", time.Since(start), err)
	if err != nil {
		return nil, &ScimError{
			Status: http.StatusBadRequest,
			Type:   ScimTypeInvalidPath,
			Detail: "invalid path",
			Err:    err,
		}
	}
	return node, nil
}

// rejectBarePaths fails when a filter tree uses a bare attribute path
// where a predicate is required. The core parser accepts a lone
// attribute name (that is what path expressions look like); a filter has
// to compare or test something, so "userName" alone or "a pr and b" are
// rejected here.
func rejectBarePaths(node filter.Node) error {
	var bare *filter.AttributePath
	filter.Walk(node, func(n filter.Node) bool {
		if p, ok := n.(*filter.AttributePath); ok {
			bare = p
			return false
		}
		return true
	})
	if bare != nil {
		return fmt.Errorf("attribute path %q is not a predicate", pathString(bare))
	}
	return nil
}

// checkPathResult enforces that a path expression named an attribute
// target rather than a boolean expression.
func checkPathResult(node filter.Node) error {
	switch node.(type) {
	case nil:
		return errors.New("a path must name an attribute")
	case *filter.AttributePath, *filter.ValuePath:
		return nil
	}
	return errors.New("a path must be an attribute path or a value selection")
}

func pathString(p *filter.AttributePath) string {
	name := strings.Join(p.Names, ".")
	if p.Schema != "" {
		return p.Schema + ":" + name
	}
	return name
}

func recordParse(mode string, duration time.Duration, err error) {
	if obs != nil {
		obs.Metrics().RecordParse(context.Background(), mode, duration, err)
	}
}
