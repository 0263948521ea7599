package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazygraph/lazygraph/log"
)

func TestListener_EventSequence(t *testing.T) {
	g := New("events")

	type event struct {
		kind EvalEvent
		node string
	}
	var seen []event
	g.AddListener(EvalListenerFunc(func(_ context.Context, kind EvalEvent, node string, _ error) {
		seen = append(seen, event{kind, node})
	}))

	d := buildDiamond(t, g)
	_, err := d.dOut.Value(context.Background())
	require.NoError(t, err)

	assert.Contains(t, seen, event{EvalEventConnect, "B"})
	assert.Contains(t, seen, event{EvalEventStart, "A"})
	assert.Contains(t, seen, event{EvalEventComplete, "A"})
	assert.Contains(t, seen, event{EvalEventComplete, "D"})

	// A start always precedes its completion.
	starts := make(map[string]int)
	for i, e := range seen {
		if e.kind == EvalEventStart {
			starts[e.node] = i
		}
		if e.kind == EvalEventComplete {
			assert.Less(t, starts[e.node], i)
		}
	}

	seen = seen[:0]
	d.aOut.Invalidate()
	assert.Contains(t, seen, event{EvalEventTaint, "A"})
}

func TestMetricsListener(t *testing.T) {
	g := New("metrics")
	metrics := NewMetricsListener()
	g.AddListener(metrics)

	d := buildDiamond(t, g)
	_, err := d.dOut.Value(context.Background())
	require.NoError(t, err)

	stats := metrics.Metrics("A")
	assert.Equal(t, int64(1), stats.Evaluations)
	assert.Equal(t, int64(0), stats.Errors)

	d.aOut.Invalidate()
	assert.Equal(t, int64(1), metrics.Metrics("A").Taints)

	d.src.fail(errors.New("readout failure"))
	_, err = d.dOut.Value(context.Background())
	require.Error(t, err)
	assert.Equal(t, int64(1), metrics.Metrics("A").Errors)

	metrics.Reset()
	assert.Equal(t, NodeMetrics{}, metrics.Metrics("A"))
	assert.Equal(t, NodeMetrics{}, metrics.Metrics("unknown"))
}

func TestLoggingListener(t *testing.T) {
	// Smoke test: the listener must not panic on any event kind.
	l := NewLoggingListener(&log.NoOpLogger{})
	l.OnEvalEvent(context.Background(), EvalEventStart, "N", nil)
	l.OnEvalEvent(context.Background(), EvalEventError, "N", errors.New("boom"))

	assert.NotNil(t, NewLoggingListener(nil))
}
