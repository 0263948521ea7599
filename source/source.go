// Package source provides data-ingestion collaborators for source nodes.
//
// A source node has no inputs; its output is supplied by an external
// collaborator implementing graph.Ingestor. This package provides the common
// adapters; backend-specific ingestors live in sub-packages. Ingestion
// failures surface as *graph.UpstreamIOError at the source's evaluation.
package source

import (
	"context"
	"fmt"

	"github.com/lazygraph/lazygraph/buffer"
	"github.com/lazygraph/lazygraph/graph"
)

// Static returns an ingestor that always delivers the given buffer.
func Static(b *buffer.Buffer) graph.Ingestor {
	return graph.IngestorFunc(func(context.Context) (*buffer.Buffer, error) {
		if b == nil {
			return nil, fmt.Errorf("static source has no buffer")
		}
		return b, nil
	})
}

// Func adapts a plain function to an ingestor.
func Func(fetch func(ctx context.Context) (*buffer.Buffer, error)) graph.Ingestor {
	return graph.IngestorFunc(fetch)
}

// Checked wraps an ingestor with a contract check, rejecting buffers that do
// not satisfy the declared dtype/shape before they reach the output.
func Checked(ing graph.Ingestor, contract buffer.Contract) graph.Ingestor {
	return graph.IngestorFunc(func(ctx context.Context) (*buffer.Buffer, error) {
		b, err := ing.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := contract.Check(b); err != nil {
			return nil, fmt.Errorf("ingested buffer rejected: %w", err)
		}
		return b, nil
	})
}
