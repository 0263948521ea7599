package graph

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// TraceEvent represents the kinds of spans emitted during evaluation.
type TraceEvent string

const (
	// TraceEventNodeEval covers one run of a node's evaluation procedure.
	TraceEventNodeEval TraceEvent = "node_eval"
)

// TraceSpan represents one traced unit of work with timing and outcome.
type TraceSpan struct {
	// ID is a unique identifier for this span.
	ID string

	// Event indicates which kind of work this span covers.
	Event TraceEvent

	// Node is the name of the node being evaluated.
	Node string

	// StartTime is when the span began.
	StartTime time.Time

	// EndTime is when the span completed (zero while ongoing).
	EndTime time.Time

	// Duration is the total time taken, set when the span ends.
	Duration time.Duration

	// Error is the evaluation failure, if any.
	Error error
}

// TraceHook defines the interface for trace event handlers.
type TraceHook interface {
	// OnSpanEnd is called when a span completes.
	OnSpanEnd(ctx context.Context, span *TraceSpan)
}

// TraceHookFunc is a function adapter for TraceHook.
type TraceHookFunc func(ctx context.Context, span *TraceSpan)

// OnSpanEnd implements the TraceHook interface.
func (f TraceHookFunc) OnSpanEnd(ctx context.Context, span *TraceSpan) {
	f(ctx, span)
}

// Tracer collects evaluation spans and forwards completed spans to hooks.
type Tracer struct {
	mu    sync.Mutex
	hooks []TraceHook
	spans []*TraceSpan
}

// NewTracer creates a new tracer instance.
func NewTracer(hooks ...TraceHook) *Tracer {
	return &Tracer{hooks: hooks}
}

// AddHook registers an additional hook.
func (t *Tracer) AddHook(hook TraceHook) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, hook)
}

// StartSpan begins a span for the given node.
func (t *Tracer) StartSpan(_ context.Context, event TraceEvent, node string) *TraceSpan {
	return &TraceSpan{
		ID:        uuid.New().String(),
		Event:     event,
		Node:      node,
		StartTime: time.Now(),
	}
}

// EndSpan completes a span, records it and notifies the hooks.
func (t *Tracer) EndSpan(ctx context.Context, span *TraceSpan, err error) {
	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	span.Error = err

	t.mu.Lock()
	t.spans = append(t.spans, span)
	hooks := t.hooks
	t.mu.Unlock()

	for _, hook := range hooks {
		hook.OnSpanEnd(ctx, span)
	}
}

// Spans returns a snapshot of all completed spans in completion order.
func (t *Tracer) Spans() []*TraceSpan {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*TraceSpan, len(t.spans))
	copy(out, t.spans)
	return out
}

// Reset discards all recorded spans.
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = nil
}
