package graph

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazygraph/lazygraph/buffer"
)

func TestValue_EndToEnd(t *testing.T) {
	g := New("e2e")
	src := newMutableSource(1, 2, 3)

	s, sOut, err := g.AddSource("S", buffer.VectorOf(3), src)
	require.NoError(t, err)

	m, mIn, mOut := addMapNode(t, g, "M", func(v float64) float64 { return v * v })
	require.NoError(t, g.Connect(sOut, mIn))

	// First request evaluates both nodes.
	v, err := mOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 9}, v.Float64s())
	assert.Equal(t, uint64(1), s.EvalCount())
	assert.Equal(t, uint64(1), m.EvalCount())
	assert.False(t, s.IsDirty())
	assert.False(t, m.IsDirty())

	// Second request returns the same cached buffer without re-evaluation.
	v2, err := mOut.Value(context.Background())
	require.NoError(t, err)
	assert.Same(t, v, v2)
	assert.Equal(t, uint64(1), s.EvalCount())
	assert.Equal(t, uint64(1), m.EvalCount())

	// Invalidate the source, change its data; the next request recomputes.
	src.set(2, 2, 2)
	sOut.Invalidate()
	assert.True(t, s.IsDirty())
	assert.True(t, m.IsDirty())

	v3, err := mOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 4, 4}, v3.Float64s())
	assert.Equal(t, uint64(2), s.EvalCount())
	assert.Equal(t, uint64(2), m.EvalCount())
}

func TestValue_IdempotentCaching(t *testing.T) {
	g := New("caching")
	d := buildDiamond(t, g)

	v, err := d.dOut.Value(context.Background())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := d.dOut.Value(context.Background())
		require.NoError(t, err)
		assert.Same(t, v, again)
		assert.True(t, v.Equal(again))
	}
	assert.Equal(t, uint64(1), d.a.EvalCount())
	assert.Equal(t, uint64(1), d.b.EvalCount())
	assert.Equal(t, uint64(1), d.c.EvalCount())
	assert.Equal(t, uint64(1), d.d.EvalCount())
}

func TestValue_DiamondDeduplication(t *testing.T) {
	g := New("diamond")
	d := buildDiamond(t, g)

	// A=[1,2,3], B=A+1=[2,3,4], C=A*2=[2,4,6], D=B+C=[4,7,10].
	v, err := d.dOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 7, 10}, v.Float64s())

	// The shared ancestor evaluated exactly once.
	assert.Equal(t, uint64(1), d.a.EvalCount())
	assert.Equal(t, 1, d.src.hits)
}

func TestValue_MinimalRecomputation(t *testing.T) {
	g := New("minimal")

	// Two independent chains sharing nothing.
	left := newMutableSource(1)
	_, leftOut, err := g.AddSource("left", buffer.VectorOf(1), left)
	require.NoError(t, err)
	lNode, lIn, lOut := addMapNode(t, g, "left_x10", func(v float64) float64 { return v * 10 })
	require.NoError(t, g.Connect(leftOut, lIn))

	right := newMutableSource(2)
	_, rightOut, err := g.AddSource("right", buffer.VectorOf(1), right)
	require.NoError(t, err)
	rNode, rIn, rOut := addMapNode(t, g, "right_x10", func(v float64) float64 { return v * 10 })
	require.NoError(t, g.Connect(rightOut, rIn))

	_, err = lOut.Value(context.Background())
	require.NoError(t, err)
	_, err = rOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), lNode.EvalCount())
	assert.Equal(t, uint64(1), rNode.EvalCount())

	// Invalidating the left source must not touch the right chain.
	leftOut.Invalidate()
	v, err := rOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{20}, v.Float64s())
	assert.Equal(t, uint64(1), rNode.EvalCount())
	assert.False(t, rNode.IsDirty())
	assert.True(t, lNode.IsDirty())
}

func TestValue_UnresolvedInput(t *testing.T) {
	g := New("unresolved")
	n, _, out := addMapNode(t, g, "M", func(v float64) float64 { return v })

	_, err := out.Value(context.Background())
	var unresolved *UnresolvedInputError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "M", unresolved.Node)
	assert.Equal(t, "x", unresolved.Input)
	assert.True(t, n.IsDirty())
}

func TestValue_DefaultInput(t *testing.T) {
	g := New("defaults")
	n, err := g.AddNode("scale", mapEvaluator(func(v float64) float64 { return v * 3 }))
	require.NoError(t, err)
	_, err = n.AddInputWithDefault("x", buffer.VectorOf(2), buffer.Vector(1, 2))
	require.NoError(t, err)
	out, err := n.AddOutput("y", buffer.Any)
	require.NoError(t, err)

	v, err := out.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 6}, v.Float64s())
}

func TestValue_UpstreamIOError(t *testing.T) {
	g := New("io")
	src := newMutableSource(1, 2, 3)
	s, sOut, err := g.AddSource("S", buffer.VectorOf(3), src)
	require.NoError(t, err)
	m, mIn, mOut := addMapNode(t, g, "M", func(v float64) float64 { return v })
	require.NoError(t, g.Connect(sOut, mIn))

	src.fail(errors.New("file truncated"))

	_, err = mOut.Value(context.Background())
	var ioErr *UpstreamIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "S", ioErr.Node)

	// Nothing was published, both nodes stay dirty and a retry succeeds.
	assert.True(t, s.IsDirty())
	assert.True(t, m.IsDirty())
	src.fail(nil)
	v, err := mOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, v.Float64s())
}

func TestValue_EvaluationErrorKeepsPreviousValue(t *testing.T) {
	g := New("failure")
	src := newMutableSource(1, 2, 3)
	_, sOut, err := g.AddSource("S", buffer.VectorOf(3), src)
	require.NoError(t, err)

	fail := false
	n, err := g.AddNode("flaky", EvaluatorFunc(
		func(_ context.Context, in []*buffer.Buffer) ([]*buffer.Buffer, error) {
			if fail {
				return nil, errors.New("numerical instability")
			}
			return []*buffer.Buffer{in[0]}, nil
		}))
	require.NoError(t, err)
	in, err := n.AddInput("x", buffer.Any)
	require.NoError(t, err)
	out, err := n.AddOutput("y", buffer.Any)
	require.NoError(t, err)
	require.NoError(t, g.Connect(sOut, in))

	v, err := out.Value(context.Background())
	require.NoError(t, err)

	fail = true
	out.Invalidate()
	_, err = out.Value(context.Background())
	var evalErr *EvaluationError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "flaky", evalErr.Node)

	// Previous cached value survives the failed attempt; the node is still
	// dirty and a later retry sees it so.
	assert.Same(t, v, out.Peek())
	assert.True(t, n.IsDirty())
}

func TestValue_ContractFixedByFirstEvaluation(t *testing.T) {
	g := New("contract-fix")
	src := newMutableSource(1, 2, 3)
	_, sOut, err := g.AddSource("S", buffer.Typed(buffer.DTypeFloat64), src)
	require.NoError(t, err)

	// Open shape side is fixed by the first publication.
	_, err = sOut.Value(context.Background())
	require.NoError(t, err)
	assert.True(t, sOut.Contract().Fixed())
	assert.Equal(t, buffer.Shape{3}, sOut.Contract().Shape)

	// Republishing a different shape violates the now-fixed contract.
	src.set(1, 2, 3, 4, 5)
	sOut.Invalidate()
	_, err = sOut.Value(context.Background())
	var violation *ContractViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "S", violation.Node)
	assert.Equal(t, "value", violation.Output)
}

func TestValue_PublishViolatingDeclaredShape(t *testing.T) {
	g := New("contract-publish")
	src := newMutableSource(1, 2, 3, 4, 5)

	// Declared (3,) but the ingestor supplies (5,).
	s, sOut, err := g.AddSource("S", buffer.VectorOf(3), src)
	require.NoError(t, err)

	_, err = sOut.Value(context.Background())
	var violation *ContractViolationError
	require.ErrorAs(t, err, &violation)
	assert.True(t, s.IsDirty())
	assert.Nil(t, sOut.Peek())
}

func TestValue_Cancellation(t *testing.T) {
	g := New("cancel")
	d := buildDiamond(t, g)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.dOut.Value(ctx)
	require.ErrorIs(t, err, context.Canceled)

	// No partial publication: everything is still dirty and untouched.
	assert.True(t, d.a.IsDirty())
	assert.True(t, d.d.IsDirty())
	assert.Equal(t, uint64(0), d.a.EvalCount())
	assert.Nil(t, d.dOut.Peek())

	// A later retry with a live context succeeds.
	v, err := d.dOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 7, 10}, v.Float64s())
}

func TestValue_ReentrantDescentPanics(t *testing.T) {
	g := New("reentrant")
	_, aIn, aOut := addMapNode(t, g, "A", func(v float64) float64 { return v })
	_, bIn, bOut := addMapNode(t, g, "B", func(v float64) float64 { return v })
	require.NoError(t, g.Connect(aOut, bIn))

	// Forge the back edge behind Connect's cycle check to prove the engine
	// treats re-entrant descent as fatal rather than looping forever.
	aIn.source = bOut
	bOut.addConsumer(aIn)

	assert.Panics(t, func() {
		_, _ = aOut.Value(context.Background())
	})
}

func TestValue_RepublicationTaintsSiblingConsumers(t *testing.T) {
	g := New("republish")

	// A two-output node: pulling through one branch republishes both outputs.
	scale := 1.0
	split, err := g.AddNode("split", EvaluatorFunc(
		func(_ context.Context, _ []*buffer.Buffer) ([]*buffer.Buffer, error) {
			return []*buffer.Buffer{buffer.Vector(scale), buffer.Vector(scale * 10)}, nil
		}))
	require.NoError(t, err)
	lo, err := split.AddOutput("lo", buffer.VectorOf(1))
	require.NoError(t, err)
	hi, err := split.AddOutput("hi", buffer.VectorOf(1))
	require.NoError(t, err)

	x, xIn, xOut := addMapNode(t, g, "X", func(v float64) float64 { return v })
	require.NoError(t, g.Connect(lo, xIn))
	y, yIn, yOut := addMapNode(t, g, "Y", func(v float64) float64 { return v })
	require.NoError(t, g.Connect(hi, yIn))

	_, err = xOut.Value(context.Background())
	require.NoError(t, err)
	v, err := yOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, v.Float64s())

	// Invalidate one output and pull through the other branch only. The
	// republished second output changed, so its consumer must be tainted
	// even though the invalidation never reached it.
	scale = 2
	g.Invalidate(lo)
	assert.False(t, y.IsDirty())

	_, err = xOut.Value(context.Background())
	require.NoError(t, err)
	assert.False(t, x.IsDirty())
	assert.True(t, y.IsDirty())

	v, err = yOut.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{20}, v.Float64s())
	assert.Equal(t, uint64(2), y.EvalCount())
}

func TestValue_InvalidateDuringEvaluationKeepsDirty(t *testing.T) {
	g := New("midflight")

	var reading atomic.Pointer[buffer.Buffer]
	reading.Store(buffer.Vector(1))

	var gateOnce sync.Once
	entered := make(chan struct{})
	release := make(chan struct{})
	n, err := g.AddNode("sensor", EvaluatorFunc(
		func(_ context.Context, _ []*buffer.Buffer) ([]*buffer.Buffer, error) {
			v := reading.Load()
			gated := false
			gateOnce.Do(func() { gated = true })
			if gated {
				close(entered)
				<-release
			}
			return []*buffer.Buffer{v}, nil
		}))
	require.NoError(t, err)
	out, err := n.AddOutput("value", buffer.VectorOf(1))
	require.NoError(t, err)

	var first *buffer.Buffer
	done := make(chan error, 1)
	go func() {
		v, verr := out.Value(context.Background())
		first = v
		done <- verr
	}()

	// The reading changes while the node is mid-evaluation. That taint must
	// survive the in-flight pass's publication.
	<-entered
	reading.Store(buffer.Vector(2))
	out.Invalidate()
	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, []float64{1}, first.Float64s())
	assert.True(t, n.IsDirty())

	v, err := out.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{2}, v.Float64s())
	assert.Equal(t, uint64(2), n.EvalCount())
}

func TestValue_FastPathSkipsEngine(t *testing.T) {
	g := New("fastpath")
	src := newMutableSource(7)
	s, sOut, err := g.AddSource("S", buffer.VectorOf(1), src)
	require.NoError(t, err)

	_, err = sOut.Value(context.Background())
	require.NoError(t, err)

	// A cancelled context is irrelevant on the fast path: the cached value
	// is returned without touching the engine.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, err := sOut.Value(ctx)
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, v.Float64s())
	assert.Equal(t, uint64(1), s.EvalCount())
}
