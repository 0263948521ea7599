// Package export provides collaborators that serialize computed output
// values. An Exporter pulls values through the lazy engine (triggering only
// the recomputation actually required) and hands each buffer to a Sink.
// Backend-specific sinks live in sub-packages; a CSV sink is built in.
//
// Sinks persist computed values only, never graph topology or dirty flags.
package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/lazygraph/lazygraph/buffer"
	"github.com/lazygraph/lazygraph/graph"
)

// Sink receives named buffers for serialization.
type Sink interface {
	Write(ctx context.Context, name string, buf *buffer.Buffer) error
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(ctx context.Context, name string, buf *buffer.Buffer) error

// Write implements the Sink interface.
func (f SinkFunc) Write(ctx context.Context, name string, buf *buffer.Buffer) error {
	return f(ctx, name, buf)
}

// entry pairs an export name with the output it reads.
type entry struct {
	name string
	out  *graph.Output
}

// Exporter reads a chosen set of outputs and writes them to a sink.
type Exporter struct {
	sink     Sink
	entries  []entry
	parallel bool
}

// NewExporter creates an exporter writing to the given sink.
func NewExporter(sink Sink) *Exporter {
	return &Exporter{sink: sink}
}

// SetParallel makes Run resolve values with the parallel evaluation strategy.
func (e *Exporter) SetParallel(parallel bool) {
	e.parallel = parallel
}

// Add registers an output under an export name. Outputs are exported in
// registration order.
func (e *Exporter) Add(name string, out *graph.Output) *Exporter {
	e.entries = append(e.entries, entry{name: name, out: out})
	return e
}

// Run pulls every registered output's value and writes it to the sink. The
// pull evaluates only the dirty portion of each dependency chain; clean
// cached values are exported as-is.
func (e *Exporter) Run(ctx context.Context) error {
	for _, ent := range e.entries {
		var (
			buf *buffer.Buffer
			err error
		)
		if e.parallel {
			buf, err = ent.out.ValueParallel(ctx)
		} else {
			buf, err = ent.out.Value(ctx)
		}
		if err != nil {
			return fmt.Errorf("export %s: %w", ent.name, err)
		}
		if err := e.sink.Write(ctx, ent.name, buf); err != nil {
			return fmt.Errorf("export %s: %w", ent.name, err)
		}
	}
	return nil
}

// CSVSink writes one row per buffer: name, dtype, shape, then the flattened
// values in row-major order.
type CSVSink struct {
	w *csv.Writer
}

// NewCSVSink creates a CSV sink writing to the given writer.
func NewCSVSink(w io.Writer) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w)}
}

// Write implements the Sink interface.
func (s *CSVSink) Write(_ context.Context, name string, buf *buffer.Buffer) error {
	record := []string{name, buf.DType().String(), buf.Shape().String()}
	for i := 0; i < buf.Size(); i++ {
		record = append(record, strconv.FormatFloat(buf.FloatAt(i), 'g', -1, 64))
	}
	if err := s.w.Write(record); err != nil {
		return err
	}
	s.w.Flush()
	return s.w.Error()
}
