package graph

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lazygraph/lazygraph/buffer"
)

// mutableSource is a test ingestor whose delivered values can be swapped out,
// standing in for an external data reader.
type mutableSource struct {
	mu   sync.Mutex
	buf  *buffer.Buffer
	err  error
	hits int
}

func newMutableSource(values ...float64) *mutableSource {
	return &mutableSource{buf: buffer.Vector(values...)}
}

func (s *mutableSource) Fetch(context.Context) (*buffer.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits++
	if s.err != nil {
		return nil, s.err
	}
	return s.buf, nil
}

func (s *mutableSource) set(values ...float64) {
	s.mu.Lock()
	s.buf = buffer.Vector(values...)
	s.mu.Unlock()
}

func (s *mutableSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// mapEvaluator applies fn elementwise to its single input.
func mapEvaluator(fn func(float64) float64) Evaluator {
	return EvaluatorFunc(func(_ context.Context, in []*buffer.Buffer) ([]*buffer.Buffer, error) {
		data := in[0].Float64s()
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = fn(v)
		}
		return []*buffer.Buffer{buffer.Vector(out...)}, nil
	})
}

// sumEvaluator adds all its inputs elementwise.
func sumEvaluator() Evaluator {
	return EvaluatorFunc(func(_ context.Context, in []*buffer.Buffer) ([]*buffer.Buffer, error) {
		out := make([]float64, in[0].Size())
		for _, b := range in {
			for i, v := range b.Float64s() {
				out[i] += v
			}
		}
		return []*buffer.Buffer{buffer.Vector(out...)}, nil
	})
}

// addMapNode creates a single-input single-output node applying fn.
func addMapNode(t *testing.T, g *Graph, name string, fn func(float64) float64) (*Node, *Input, *Output) {
	t.Helper()
	n, err := g.AddNode(name, mapEvaluator(fn))
	require.NoError(t, err)
	in, err := n.AddInput("x", buffer.Any)
	require.NoError(t, err)
	out, err := n.AddOutput("y", buffer.Any)
	require.NoError(t, err)
	return n, in, out
}

// addSumNode creates a node summing the named inputs elementwise.
func addSumNode(t *testing.T, g *Graph, name string, inputs ...string) (*Node, []*Input, *Output) {
	t.Helper()
	n, err := g.AddNode(name, sumEvaluator())
	require.NoError(t, err)
	ins := make([]*Input, len(inputs))
	for i, inName := range inputs {
		in, err := n.AddInput(inName, buffer.Any)
		require.NoError(t, err)
		ins[i] = in
	}
	out, err := n.AddOutput("sum", buffer.Any)
	require.NoError(t, err)
	return n, ins, out
}

// buildDiamond wires source -> A -> (B, C) -> D and returns the pieces.
type diamond struct {
	src              *mutableSource
	a, b, c, d       *Node
	aOut, bOut, cOut *Output
	dOut             *Output
	dIns             []*Input
}

func buildDiamond(t *testing.T, g *Graph) *diamond {
	t.Helper()
	src := newMutableSource(1, 2, 3)

	a, aOut, err := g.AddSource("A", buffer.VectorOf(3), src)
	require.NoError(t, err)

	b, bIn, bOut := addMapNode(t, g, "B", func(v float64) float64 { return v + 1 })
	c, cIn, cOut := addMapNode(t, g, "C", func(v float64) float64 { return v * 2 })
	d, dIns, dOut := addSumNode(t, g, "D", "left", "right")

	require.NoError(t, g.Connect(aOut, bIn))
	require.NoError(t, g.Connect(aOut, cIn))
	require.NoError(t, g.Connect(bOut, dIns[0]))
	require.NoError(t, g.Connect(cOut, dIns[1]))

	return &diamond{
		src: src,
		a:   a, b: b, c: c, d: d,
		aOut: aOut, bOut: bOut, cOut: cOut,
		dOut: dOut, dIns: dIns,
	}
}
