package buffer

import "fmt"

// Contract describes the dtype/shape constraints a port declares. A zero
// DType or a nil Shape leaves that side open; an open side is inherited from
// the first concrete counterpart it is connected to or evaluated against.
type Contract struct {
	DType DType
	Shape Shape
}

// Any is the fully open contract.
var Any = Contract{}

// Typed creates a contract constraining only the element type.
func Typed(dtype DType) Contract {
	return Contract{DType: dtype}
}

// Shaped creates a contract constraining both element type and shape.
func Shaped(dtype DType, shape Shape) Contract {
	return Contract{DType: dtype, Shape: shape.Clone()}
}

// VectorOf creates a float64 contract for a 1-D array of the given length.
func VectorOf(n int) Contract {
	return Contract{DType: DTypeFloat64, Shape: Shape{n}}
}

// Fixed reports whether both dtype and shape are declared.
func (c Contract) Fixed() bool {
	return c.DType.Valid() && c.Shape != nil
}

// Open reports whether any side of the contract is still undeclared.
func (c Contract) Open() bool {
	return !c.Fixed()
}

// Compatible reports whether two contracts can feed each other: each declared
// side must match, open sides match anything.
func (c Contract) Compatible(other Contract) bool {
	if c.DType.Valid() && other.DType.Valid() && c.DType != other.DType {
		return false
	}
	if c.Shape != nil && other.Shape != nil && !c.Shape.Equal(other.Shape) {
		return false
	}
	return true
}

// Merge combines two compatible contracts, filling each open side from the
// other. It fails when the declared sides disagree.
func (c Contract) Merge(other Contract) (Contract, error) {
	if !c.Compatible(other) {
		return Contract{}, fmt.Errorf("contracts %s and %s are incompatible", c, other)
	}
	merged := c
	if !merged.DType.Valid() {
		merged.DType = other.DType
	}
	if merged.Shape == nil {
		merged.Shape = other.Shape.Clone()
	}
	return merged, nil
}

// Check verifies that a buffer satisfies every declared side of the contract.
func (c Contract) Check(b *Buffer) error {
	if b == nil {
		return fmt.Errorf("nil buffer does not satisfy contract %s", c)
	}
	if c.DType.Valid() && b.DType() != c.DType {
		return fmt.Errorf("buffer dtype %s does not satisfy contract dtype %s", b.DType(), c.DType)
	}
	if c.Shape != nil && !b.Shape().Equal(c.Shape) {
		return fmt.Errorf("buffer shape %s does not satisfy contract shape %s", b.Shape(), c.Shape)
	}
	return nil
}

// FixFrom returns the contract narrowed to exactly the given buffer's dtype
// and shape. The buffer must already satisfy the contract.
func (c Contract) FixFrom(b *Buffer) (Contract, error) {
	if err := c.Check(b); err != nil {
		return Contract{}, err
	}
	return Contract{DType: b.DType(), Shape: b.Shape().Clone()}, nil
}

// String returns the contract in "dtype shape" form, with "*" for open sides.
func (c Contract) String() string {
	dtype := "*"
	if c.DType.Valid() {
		dtype = c.DType.String()
	}
	shape := "*"
	if c.Shape != nil {
		shape = c.Shape.String()
	}
	return fmt.Sprintf("{%s %s}", dtype, shape)
}
