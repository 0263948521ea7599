// Package buffer provides the typed multi-dimensional array values exchanged
// between graph ports.
//
// A Buffer couples a DType and a Shape with flat numeric storage in row-major
// order. Once a Buffer has been published to an output port it must be treated
// as immutable: recomputation produces a new Buffer rather than mutating a
// published one. A Contract describes the dtype/shape constraints a port
// declares; either side of a contract may be left open ("any") and is then
// inherited from the first concrete counterpart.
package buffer

import (
	"fmt"
	"slices"
)

// Buffer is a typed multi-dimensional array value.
type Buffer struct {
	dtype DType
	shape Shape
	f64   []float64
	i64   []int64
}

// NewFloat64 creates a float64 buffer with the given shape. The data slice is
// copied and its length must match the shape's element count.
func NewFloat64(shape Shape, data []float64) (*Buffer, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.Size() {
		return nil, fmt.Errorf("data length %d does not match shape %s (%d elements)",
			len(data), shape, shape.Size())
	}
	return &Buffer{
		dtype: DTypeFloat64,
		shape: shape.Clone(),
		f64:   slices.Clone(data),
	}, nil
}

// NewInt64 creates an int64 buffer with the given shape. The data slice is
// copied and its length must match the shape's element count.
func NewInt64(shape Shape, data []int64) (*Buffer, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.Size() {
		return nil, fmt.Errorf("data length %d does not match shape %s (%d elements)",
			len(data), shape, shape.Size())
	}
	return &Buffer{
		dtype: DTypeInt64,
		shape: shape.Clone(),
		i64:   slices.Clone(data),
	}, nil
}

// Zeros creates a zero-filled buffer of the given dtype and shape.
func Zeros(dtype DType, shape Shape) (*Buffer, error) {
	if !dtype.Valid() {
		return nil, fmt.Errorf("cannot allocate buffer with dtype %s", dtype)
	}
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	b := &Buffer{dtype: dtype, shape: shape.Clone()}
	switch dtype {
	case DTypeFloat64:
		b.f64 = make([]float64, shape.Size())
	case DTypeInt64:
		b.i64 = make([]int64, shape.Size())
	}
	return b, nil
}

// Scalar creates a zero-dimensional float64 buffer holding a single value.
func Scalar(v float64) *Buffer {
	return &Buffer{dtype: DTypeFloat64, shape: Shape{}, f64: []float64{v}}
}

// Vector creates a 1-D float64 buffer from the given values.
func Vector(data ...float64) *Buffer {
	return &Buffer{
		dtype: DTypeFloat64,
		shape: Shape{len(data)},
		f64:   slices.Clone(data),
	}
}

// DType returns the element type of the buffer.
func (b *Buffer) DType() DType {
	return b.dtype
}

// Shape returns the buffer's shape. The returned slice must not be modified.
func (b *Buffer) Shape() Shape {
	return b.shape
}

// Size returns the total number of elements.
func (b *Buffer) Size() int {
	return b.shape.Size()
}

// Float64s returns the flat float64 storage in row-major order. It returns nil
// for non-float64 buffers. Callers must not mutate a published buffer.
func (b *Buffer) Float64s() []float64 {
	return b.f64
}

// Int64s returns the flat int64 storage in row-major order. It returns nil for
// non-int64 buffers. Callers must not mutate a published buffer.
func (b *Buffer) Int64s() []int64 {
	return b.i64
}

// FloatAt returns the element at the given flat index converted to float64,
// regardless of the underlying dtype.
func (b *Buffer) FloatAt(i int) float64 {
	if b.dtype == DTypeInt64 {
		return float64(b.i64[i])
	}
	return b.f64[i]
}

// Clone returns an independent deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{
		dtype: b.dtype,
		shape: b.shape.Clone(),
		f64:   slices.Clone(b.f64),
		i64:   slices.Clone(b.i64),
	}
}

// Equal reports whether two buffers have identical dtype, shape and bit-wise
// identical contents.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.dtype != other.dtype || !b.shape.Equal(other.shape) {
		return false
	}
	return slices.Equal(b.f64, other.f64) && slices.Equal(b.i64, other.i64)
}

// String returns a short description of the buffer for logging.
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer[%s %s]", b.dtype, b.shape)
}
