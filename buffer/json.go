package buffer

import (
	"encoding/json"
	"fmt"
)

// bufferJSON is the wire envelope used by the export sinks.
type bufferJSON struct {
	DType string    `json:"dtype"`
	Shape []int     `json:"shape"`
	F64   []float64 `json:"data,omitempty"`
	I64   []int64   `json:"idata,omitempty"`
}

// MarshalJSON encodes the buffer as {dtype, shape, data}.
func (b *Buffer) MarshalJSON() ([]byte, error) {
	if !b.dtype.Valid() {
		return nil, fmt.Errorf("cannot marshal buffer with dtype %s", b.dtype)
	}
	env := bufferJSON{
		DType: b.dtype.String(),
		Shape: b.shape,
		F64:   b.f64,
		I64:   b.i64,
	}
	if env.Shape == nil {
		env.Shape = []int{}
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes a buffer from its {dtype, shape, data} envelope.
func (b *Buffer) UnmarshalJSON(data []byte) error {
	var env bufferJSON
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	dtype, err := ParseDType(env.DType)
	if err != nil {
		return err
	}
	shape := Shape(env.Shape)
	if err := shape.Validate(); err != nil {
		return err
	}
	switch dtype {
	case DTypeFloat64:
		if len(env.F64) != shape.Size() {
			return fmt.Errorf("data length %d does not match shape %s", len(env.F64), shape)
		}
	case DTypeInt64:
		if len(env.I64) != shape.Size() {
			return fmt.Errorf("data length %d does not match shape %s", len(env.I64), shape)
		}
	}
	b.dtype = dtype
	b.shape = shape
	b.f64 = env.F64
	b.i64 = env.I64
	return nil
}
