package graph

import (
	"context"
	"sync"
	"time"

	"github.com/lazygraph/lazygraph/log"
)

// EvalEvent represents the different kinds of engine events.
type EvalEvent string

const (
	// EvalEventStart indicates a node's evaluation procedure is about to run.
	EvalEventStart EvalEvent = "eval_start"

	// EvalEventComplete indicates a node published its outputs successfully.
	EvalEventComplete EvalEvent = "eval_complete"

	// EvalEventError indicates a node's evaluation failed.
	EvalEventError EvalEvent = "eval_error"

	// EvalEventTaint indicates a node was marked dirty.
	EvalEventTaint EvalEvent = "taint"

	// EvalEventConnect indicates an edge was created.
	EvalEventConnect EvalEvent = "connect"

	// EvalEventDisconnect indicates an edge was removed.
	EvalEventDisconnect EvalEvent = "disconnect"
)

// EvalListener defines the interface for engine event listeners.
type EvalListener interface {
	// OnEvalEvent is called when an engine event occurs. err is non-nil only
	// for EvalEventError.
	OnEvalEvent(ctx context.Context, event EvalEvent, node string, err error)
}

// EvalListenerFunc is a function adapter for EvalListener.
type EvalListenerFunc func(ctx context.Context, event EvalEvent, node string, err error)

// OnEvalEvent implements the EvalListener interface.
func (f EvalListenerFunc) OnEvalEvent(ctx context.Context, event EvalEvent, node string, err error) {
	f(ctx, event, node, err)
}

// LoggingListener logs every engine event through a Logger.
type LoggingListener struct {
	logger log.Logger
}

// NewLoggingListener creates a listener writing to the given logger.
func NewLoggingListener(logger log.Logger) *LoggingListener {
	if logger == nil {
		logger = log.GetDefaultLogger()
	}
	return &LoggingListener{logger: logger}
}

// OnEvalEvent implements the EvalListener interface.
func (l *LoggingListener) OnEvalEvent(_ context.Context, event EvalEvent, node string, err error) {
	if err != nil {
		l.logger.Error("node %s: %s: %v", node, event, err)
		return
	}
	l.logger.Debug("node %s: %s", node, event)
}

// NodeMetrics aggregates evaluation statistics for one node.
type NodeMetrics struct {
	Evaluations int64
	Errors      int64
	Taints      int64
	TotalTime   time.Duration
}

// MetricsListener collects per-node evaluation counts and wall time.
type MetricsListener struct {
	mu      sync.Mutex
	metrics map[string]*NodeMetrics
	started map[string]time.Time
}

// NewMetricsListener creates an empty metrics collector.
func NewMetricsListener() *MetricsListener {
	return &MetricsListener{
		metrics: make(map[string]*NodeMetrics),
		started: make(map[string]time.Time),
	}
}

// OnEvalEvent implements the EvalListener interface.
func (m *MetricsListener) OnEvalEvent(_ context.Context, event EvalEvent, node string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stats, ok := m.metrics[node]
	if !ok {
		stats = &NodeMetrics{}
		m.metrics[node] = stats
	}

	switch event {
	case EvalEventStart:
		m.started[node] = time.Now()
	case EvalEventComplete:
		stats.Evaluations++
		if start, ok := m.started[node]; ok {
			stats.TotalTime += time.Since(start)
			delete(m.started, node)
		}
	case EvalEventError:
		stats.Errors++
		delete(m.started, node)
	case EvalEventTaint:
		stats.Taints++
	}
}

// Metrics returns a snapshot of the statistics for one node.
func (m *MetricsListener) Metrics(node string) NodeMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stats, ok := m.metrics[node]; ok {
		return *stats
	}
	return NodeMetrics{}
}

// Reset clears all collected statistics.
func (m *MetricsListener) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metrics = make(map[string]*NodeMetrics)
	m.started = make(map[string]time.Time)
}
