package buffer

import (
	"fmt"
	"slices"
	"strings"
)

// Shape is the ordered sequence of dimension lengths of a Buffer.
// A nil Shape in a Contract means the shape is not yet declared.
type Shape []int

// Size returns the total number of elements described by the shape.
// A zero-dimensional shape describes a single scalar element.
func (s Shape) Size() int {
	size := 1
	for _, dim := range s {
		size *= dim
	}
	return size
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}

// Validate checks that every dimension is non-negative.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim < 0 {
			return fmt.Errorf("shape dimension %d is negative: %d", i, dim)
		}
	}
	return nil
}

// String returns the shape in "(d0,d1,...)" form.
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprintf("%d", dim)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
