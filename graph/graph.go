package graph

import (
	"context"
	"fmt"

	"github.com/lazygraph/lazygraph/buffer"
	"github.com/lazygraph/lazygraph/log"
)

// Graph is the container of nodes and the edges implied by input-to-output
// references. The node-level dependency relation is kept acyclic at all
// times: the check runs at connection time so that evaluation itself never
// needs cycle detection.
//
// Topology mutations (adding nodes and ports, wiring) are not synchronized;
// perform them before evaluating or protect them externally. Evaluation and
// taint propagation are safe to run concurrently with each other.
type Graph struct {
	name string

	nodes  []*Node
	byName map[string]*Node

	parameters map[string]*Parameter

	logger    log.Logger
	listeners []EvalListener
	tracer    *Tracer
}

// New creates an empty graph with the given name.
func New(name string) *Graph {
	return &Graph{
		name:       name,
		byName:     make(map[string]*Node),
		parameters: make(map[string]*Parameter),
		logger:     log.GetDefaultLogger(),
	}
}

// Name returns the graph's name.
func (g *Graph) Name() string {
	return g.name
}

// SetLogger replaces the graph's logger.
func (g *Graph) SetLogger(logger log.Logger) {
	if logger != nil {
		g.logger = logger
	}
}

// SetTracer sets a tracer for evaluation observability.
func (g *Graph) SetTracer(tracer *Tracer) {
	g.tracer = tracer
}

// AddListener registers a listener for evaluation and taint events.
func (g *Graph) AddListener(l EvalListener) {
	if l != nil {
		g.listeners = append(g.listeners, l)
	}
}

// AddNode creates a node with the given unique name and evaluation procedure
// and registers it in the graph.
func (g *Graph) AddNode(name string, evaluator Evaluator) (*Node, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("node %s: evaluator must not be nil", name)
	}
	if _, ok := g.byName[name]; ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeExists, name)
	}
	n := newNode(g, name, evaluator)
	g.byName[name] = n
	g.nodes = append(g.nodes, n)
	g.logger.Debug("graph %s: added node %s", g.name, name)
	return n, nil
}

// Ingestor supplies buffers for source nodes from an external collaborator,
// such as a columnar file or database reader.
type Ingestor interface {
	Fetch(ctx context.Context) (*buffer.Buffer, error)
}

// IngestorFunc is a function adapter for Ingestor.
type IngestorFunc func(ctx context.Context) (*buffer.Buffer, error)

// Fetch implements the Ingestor interface.
func (f IngestorFunc) Fetch(ctx context.Context) (*buffer.Buffer, error) {
	return f(ctx)
}

// AddSource creates a zero-input node whose single output "value" is supplied
// by the given ingestor. An ingestion failure surfaces as *UpstreamIOError at
// the source's evaluation. The source is dirty until its first evaluation or
// until explicitly invalidated; it never becomes dirty from upstream.
func (g *Graph) AddSource(name string, contract buffer.Contract, ing Ingestor) (*Node, *Output, error) {
	if ing == nil {
		return nil, nil, fmt.Errorf("source %s: ingestor must not be nil", name)
	}
	n, err := g.AddNode(name, EvaluatorFunc(
		func(ctx context.Context, _ []*buffer.Buffer) ([]*buffer.Buffer, error) {
			buf, err := ing.Fetch(ctx)
			if err != nil {
				return nil, &UpstreamIOError{Node: name, Cause: err}
			}
			return []*buffer.Buffer{buf}, nil
		}))
	if err != nil {
		return nil, nil, err
	}
	out, err := n.AddOutput("value", contract)
	if err != nil {
		return nil, nil, err
	}
	return n, out, nil
}

// Node returns the node with the given name.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Nodes returns the graph's nodes in creation order. The returned slice must
// not be modified.
func (g *Graph) Nodes() []*Node {
	return g.nodes
}

// Connect wires an output port to an input port. A connected input is rewired
// by detaching its old edge first. The contracts of both ports must be
// compatible; an open side inherits the other's contract. Connect fails with
// *CycleError when the edge would create a path from the producer back to
// itself and with *TypeMismatchError on incompatible contracts; in both cases
// the graph is left unchanged. On success the consumer node is marked dirty.
func (g *Graph) Connect(out *Output, in *Input) error {
	if out == nil || in == nil {
		return fmt.Errorf("connect: ports must not be nil")
	}
	if out.node.graph != g || in.node.graph != g {
		return fmt.Errorf("%w: %s -> %s", ErrForeignPort, out, in)
	}
	if in.source == out {
		return nil
	}

	merged, err := out.contract.Merge(in.contract)
	if err != nil {
		return &TypeMismatchError{
			Output:         out.String(),
			Input:          in.String(),
			OutputContract: out.contract,
			InputContract:  in.contract,
		}
	}

	// Reject the edge when the producer is reachable from the consumer over
	// existing edges; the cost lands on connection time, never on evaluation.
	if in.node == out.node || g.reachable(in.node, out.node) {
		return &CycleError{Producer: out.node.name, Consumer: in.node.name}
	}

	if in.source != nil {
		in.source.removeConsumer(in)
	}
	out.contract = merged
	in.contract = merged
	in.source = out
	out.addConsumer(in)
	g.taintFrom(in.node)

	g.logger.Debug("graph %s: connected %s -> %s %s", g.name, out, in, merged)
	g.notify(context.Background(), EvalEventConnect, in.node.name, nil)
	return nil
}

// Disconnect detaches an input from its producing output, marks the consumer
// node dirty and removes the consumer registration from the former producer.
// Disconnecting a dangling input is a no-op.
func (g *Graph) Disconnect(in *Input) {
	if in == nil || in.source == nil {
		return
	}
	out := in.source
	out.removeConsumer(in)
	in.source = nil
	g.taintFrom(in.node)

	g.logger.Debug("graph %s: disconnected %s -> %s", g.name, out, in)
	g.notify(context.Background(), EvalEventDisconnect, in.node.name, nil)
}

// reachable reports whether dst can be reached from src by following
// consumer edges (producer to consumer direction).
func (g *Graph) reachable(src, dst *Node) bool {
	visited := make(map[*Node]bool)
	stack := []*Node{src}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == dst {
			return true
		}
		if visited[n] {
			continue
		}
		visited[n] = true
		for _, out := range n.outputs {
			for _, consumer := range out.consumers {
				stack = append(stack, consumer.node)
			}
		}
	}
	return false
}

func (g *Graph) notify(ctx context.Context, event EvalEvent, node string, err error) {
	for _, l := range g.listeners {
		l.OnEvalEvent(ctx, event, node, err)
	}
}
