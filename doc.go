// LazyGraph - Lazy Dataflow Evaluation for Go
//
// LazyGraph is a pull-based dataflow engine for numeric pipelines. A pipeline
// is a directed acyclic graph of nodes exchanging typed multi-dimensional
// array buffers; values are computed on demand, cached on output ports and
// recomputed only where an invalidation actually propagated.
//
// # Quick Start
//
// Install the package:
//
//	go get github.com/lazygraph/lazygraph
//
// Basic example:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//
//		"github.com/lazygraph/lazygraph/buffer"
//		"github.com/lazygraph/lazygraph/graph"
//	)
//
//	func main() {
//		g := graph.New("pipeline")
//
//		// A settable parameter feeding the pipeline
//		raw, _ := g.AddParameter("raw", 1, 2, 3)
//
//		// A node squaring its input
//		square, _ := g.AddNode("square", graph.EvaluatorFunc(
//			func(_ context.Context, inputs []*buffer.Buffer) ([]*buffer.Buffer, error) {
//				in := inputs[0].Float64s()
//				out := make([]float64, len(in))
//				for i, v := range in {
//					out[i] = v * v
//				}
//				return []*buffer.Buffer{buffer.Vector(out...)}, nil
//			}))
//		in, _ := square.AddInput("x", buffer.Any)
//		out, _ := square.AddOutput("y", buffer.Any)
//		g.Connect(raw.Output(), in)
//
//		// First request evaluates, second is served from cache
//		v, _ := out.Value(context.Background())
//		fmt.Println(v.Float64s()) // [1 4 9]
//
//		// A parameter change taints only its downstream
//		raw.Set(4, 5, 6)
//		v, _ = out.Value(context.Background())
//		fmt.Println(v.Float64s()) // [16 25 36]
//	}
//
// # Key Features
//
//   - Lazy Evaluation: values are pulled on demand and cached per output
//   - Minimal Recomputation: invalidation taints exactly the reachable
//     downstream; every other cached value survives
//   - Type Contracts: dtype/shape constraints checked at wiring time and
//     fixed by the first published value
//   - Cycle Safety: edges that would close a cycle are rejected when wired
//   - Parallel Pulls: independent branches can be resolved concurrently
//   - Observability: listeners, metrics, tracing and diagram export
//   - Ingestion and Export: SQLite column sources; CSV, SQLite, Redis and
//     Postgres result sinks
//
// # Packages
//
//   - buffer: typed array values and dtype/shape contracts
//   - graph: the core engine (nodes, ports, evaluation, taint, parameters)
//   - source: ingestion collaborators for source nodes
//   - export: sinks that serialize computed values
//   - config: YAML parameter files
//   - log: the logging interface and adapters
//
// See the examples directory for runnable demonstrations.
package lazygraph
