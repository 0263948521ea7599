package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lazygraph/lazygraph/buffer"
	"github.com/lazygraph/lazygraph/graph"
)

func TestStatic(t *testing.T) {
	b := buffer.Vector(1, 2, 3)
	ing := Static(b)

	got, err := ing.Fetch(context.Background())
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = Static(nil).Fetch(context.Background())
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	calls := 0
	ing := Func(func(context.Context) (*buffer.Buffer, error) {
		calls++
		return buffer.Scalar(float64(calls)), nil
	})

	got, err := ing.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.FloatAt(0))
	got, err = ing.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.FloatAt(0))
}

func TestChecked(t *testing.T) {
	ing := Checked(Static(buffer.Vector(1, 2)), buffer.VectorOf(2))
	got, err := ing.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, got.Float64s())

	ing = Checked(Static(buffer.Vector(1, 2)), buffer.VectorOf(3))
	_, err = ing.Fetch(context.Background())
	assert.ErrorContains(t, err, "ingested buffer rejected")

	fetchErr := errors.New("link down")
	ing = Checked(Func(func(context.Context) (*buffer.Buffer, error) {
		return nil, fetchErr
	}), buffer.Any)
	_, err = ing.Fetch(context.Background())
	assert.ErrorIs(t, err, fetchErr)
}

func TestStatic_FeedsGraph(t *testing.T) {
	g := graph.New("static")
	_, out, err := g.AddSource("S", buffer.VectorOf(2), Static(buffer.Vector(4, 5)))
	require.NoError(t, err)

	v, err := out.Value(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5}, v.Float64s())
}
