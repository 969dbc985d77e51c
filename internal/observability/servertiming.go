package observability

import (
	"context"
	"sync"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
)

// ServerTimingMetric wraps the server-timing library's Metric type.
type ServerTimingMetric struct {
	metric *servertiming.Metric
}

// Stop stops the timing metric.
func (m *ServerTimingMetric) Stop() {
	if m != nil && m.metric != nil {
		m.metric.Stop()
	}
}

// StartServerTiming starts a server-timing metric with the given name.
// Returns a metric that should be stopped when the timed operation completes.
// If server timing is not enabled or the context doesn't contain timing info, returns a no-op metric.
func StartServerTiming(ctx context.Context, name string) *ServerTimingMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &ServerTimingMetric{}
	}

	return &ServerTimingMetric{
		metric: timing.NewMetric(name).Start(),
	}
}

// StartServerTimingWithDesc starts a server-timing metric with the given name and description.
// Returns a metric that should be stopped when the timed operation completes.
// If server timing is not enabled or the context doesn't contain timing info, returns a no-op metric.
func StartServerTimingWithDesc(ctx context.Context, name, description string) *ServerTimingMetric {
	timing := servertiming.FromContext(ctx)
	if timing == nil {
		return &ServerTimingMetric{}
	}

	return &ServerTimingMetric{
		metric: timing.NewMetric(name).WithDesc(description).Start(),
	}
}

// DBTimeAccumulator sums the database time spent while serving one request.
// The total is reported as the "db" metric in the Server-Timing header.
type DBTimeAccumulator struct {
	mu    sync.Mutex
	total time.Duration
}

// Add adds a duration to the accumulator. Safe for concurrent use.
func (a *DBTimeAccumulator) Add(d time.Duration) {
	a.mu.Lock()
	a.total += d
	a.mu.Unlock()
}

// Duration returns the accumulated database time.
func (a *DBTimeAccumulator) Duration() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

type dbTimeContextKey struct{}

// WithDBTimeAccumulator returns a context carrying a fresh accumulator.
// Request middleware installs one per request; the GORM timing callbacks
// add into it.
func WithDBTimeAccumulator(ctx context.Context) context.Context {
	return context.WithValue(ctx, dbTimeContextKey{}, &DBTimeAccumulator{})
}

// DBTimeAccumulatorFromContext returns the context's accumulator, or nil.
func DBTimeAccumulatorFromContext(ctx context.Context) *DBTimeAccumulator {
	acc, _ := ctx.Value(dbTimeContextKey{}).(*DBTimeAccumulator)
	return acc
}

// AddDBTime adds database time to the context's accumulator, if present.
func AddDBTime(ctx context.Context, d time.Duration) {
	if acc := DBTimeAccumulatorFromContext(ctx); acc != nil {
		acc.Add(d)
	}
}
