package buffer

import "fmt"

// DType identifies the element type of a Buffer.
type DType int

const (
	// DTypeInvalid is the zero value and marks an undeclared element type.
	DTypeInvalid DType = iota

	// DTypeFloat64 marks 64-bit floating point elements.
	DTypeFloat64

	// DTypeInt64 marks 64-bit signed integer elements.
	DTypeInt64
)

// String returns the string representation of the DType.
func (d DType) String() string {
	switch d {
	case DTypeInvalid:
		return "invalid"
	case DTypeFloat64:
		return "float64"
	case DTypeInt64:
		return "int64"
	default:
		return fmt.Sprintf("unknown(%d)", int(d))
	}
}

// Valid reports whether d is a declared element type.
func (d DType) Valid() bool {
	return d == DTypeFloat64 || d == DTypeInt64
}

// ParseDType converts a string produced by DType.String back to a DType.
func ParseDType(s string) (DType, error) {
	switch s {
	case "float64":
		return DTypeFloat64, nil
	case "int64":
		return DTypeInt64, nil
	default:
		return DTypeInvalid, fmt.Errorf("unknown dtype: %q", s)
	}
}
