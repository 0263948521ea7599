// Package graph provides the core model and lazy evaluation engine for
// dataflow computation graphs.
//
// A Graph contains Nodes; each Node has named Input and Output ports and an
// evaluation procedure. Outputs cache computed buffers and fan out to many
// Inputs; an Input references exactly one producing Output. Results are
// computed on demand and cached until an upstream change invalidates them, so
// recomputation only ever touches the subgraph actually affected by a change.
//
// # Core Concepts
//
// ## Pull-based lazy evaluation
// Requesting an Output's value with Value walks the dirty portion of the
// upstream dependency chain depth-first, runs each dirty node's evaluation
// procedure exactly once per request, and returns the cached buffer. A clean
// node with a cached value is an O(1) fast path. Diamond-shaped dependencies
// are de-duplicated by node identity, so a shared ancestor evaluates once per
// top-level request.
//
// ## Taint propagation
// Invalidate marks an output's owning node dirty and propagates the flag
// breadth-first to every downstream node, visiting each at most once and
// never recomputing anything. Evaluation runs top-down (consumer to
// producer); invalidation runs bottom-up (producer to consumer).
//
// ## Contracts
// Every port declares a dtype/shape contract, possibly partially open. Open
// sides are inherited on first connection; a contract is fixed permanently by
// the first published buffer. Incompatible connections fail with
// TypeMismatchError, violating publications with ContractViolationError.
//
// ## Acyclicity
// Connect rejects any edge that would create a cycle, checked by reachability
// over the existing edges at connection time. Evaluation therefore never
// performs cycle detection; re-entering a node mid-evaluation is a fatal
// invariant violation and panics.
//
// # Example
//
//	g := graph.New("pipeline")
//
//	src, srcOut, _ := g.AddSource("events", buffer.VectorOf(3),
//		source.Static(buffer.Vector(1, 2, 3)))
//
//	square, _ := g.AddNode("square", graph.EvaluatorFunc(
//		func(ctx context.Context, in []*buffer.Buffer) ([]*buffer.Buffer, error) {
//			data := in[0].Float64s()
//			out := make([]float64, len(data))
//			for i, v := range data {
//				out[i] = v * v
//			}
//			return []*buffer.Buffer{buffer.Vector(out...)}, nil
//		}))
//	sqIn, _ := square.AddInput("x", buffer.Any)
//	sqOut, _ := square.AddOutput("y", buffer.Any)
//
//	_ = g.Connect(srcOut, sqIn)
//
//	v, _ := sqOut.Value(context.Background()) // [1 4 9]
//
//	srcOut.Invalidate() // only "events" and "square" become dirty
//	_ = src
//
// # Concurrency
//
// Value is a synchronous recursive pull. ValueParallel additionally resolves
// sibling inputs in parallel tasks joined before each node's own evaluation;
// a per-node lock guarantees an evaluation procedure runs at most once
// concurrently, and outputs are published atomically only at the end of a
// successful evaluation, so a cancelled or failed evaluation leaves previous
// cached values and dirty flags untouched.
//
// Topology mutations are not synchronized: build the graph before evaluating
// it, or guard wiring externally.
package graph
