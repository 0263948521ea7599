package graph

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lazygraph/lazygraph/buffer"
)

// Evaluator is the computation attached to a node. It receives the resolved
// input buffers in declaration order and must return one buffer per declared
// output, in declaration order. Published buffers must not be mutated
// afterwards; a node that wants to reuse storage may only do so when the
// dtype and shape are provably unchanged.
type Evaluator interface {
	Evaluate(ctx context.Context, inputs []*buffer.Buffer) ([]*buffer.Buffer, error)
}

// EvaluatorFunc is a function adapter for Evaluator.
type EvaluatorFunc func(ctx context.Context, inputs []*buffer.Buffer) ([]*buffer.Buffer, error)

// Evaluate implements the Evaluator interface.
func (f EvaluatorFunc) Evaluate(ctx context.Context, inputs []*buffer.Buffer) ([]*buffer.Buffer, error) {
	return f(ctx, inputs)
}

// Node is a unit of computation: named input ports, named output ports and an
// evaluation procedure. Nodes are created through Graph.AddNode and own their
// ports exclusively.
type Node struct {
	id    uuid.UUID
	name  string
	graph *Graph

	evaluator Evaluator

	inputs      []*Input
	inputIndex  map[string]int
	outputs     []*Output
	outputIndex map[string]int

	// dirty means the node's cached outputs must not be trusted without
	// re-evaluation. Every node starts dirty.
	dirty     atomic.Bool
	evalCount atomic.Uint64

	// taintGen counts taint arrivals. An evaluation pass records it before
	// reading its inputs and clears dirty only when no taint landed since.
	taintGen atomic.Uint64

	// evalMu serializes the node's evaluation procedure. An output is only
	// mutated by its owning node's evaluation, so fan-out reads stay safe.
	evalMu sync.Mutex
}

func newNode(g *Graph, name string, evaluator Evaluator) *Node {
	n := &Node{
		id:          uuid.New(),
		name:        name,
		graph:       g,
		evaluator:   evaluator,
		inputIndex:  make(map[string]int),
		outputIndex: make(map[string]int),
	}
	n.dirty.Store(true)
	return n
}

// ID returns the node's unique identifier.
func (n *Node) ID() uuid.UUID {
	return n.id
}

// Name returns the node's name, unique within its graph.
func (n *Node) Name() string {
	return n.name
}

// Graph returns the graph the node belongs to.
func (n *Node) Graph() *Graph {
	return n.graph
}

// IsDirty reports whether the node must be re-evaluated before any of its
// outputs can be trusted.
func (n *Node) IsDirty() bool {
	return n.dirty.Load()
}

// EvalCount returns how many times the node's evaluation procedure has run.
func (n *Node) EvalCount() uint64 {
	return n.evalCount.Load()
}

// AddInput declares a new named input port with the given contract.
func (n *Node) AddInput(name string, contract buffer.Contract) (*Input, error) {
	if _, ok := n.inputIndex[name]; ok {
		return nil, fmt.Errorf("%w: input %s.%s", ErrPortExists, n.name, name)
	}
	in := &Input{name: name, node: n, contract: contract}
	n.inputIndex[name] = len(n.inputs)
	n.inputs = append(n.inputs, in)
	n.graph.logger.Debug("node %s: added input %s %s", n.name, name, contract)
	return in, nil
}

// AddInputWithDefault declares an input port carrying a default value used
// when the port is left unconnected.
func (n *Node) AddInputWithDefault(name string, contract buffer.Contract, def *buffer.Buffer) (*Input, error) {
	if err := contract.Check(def); err != nil {
		return nil, fmt.Errorf("default for input %s.%s: %w", n.name, name, err)
	}
	in, err := n.AddInput(name, contract)
	if err != nil {
		return nil, err
	}
	in.def = def
	return in, nil
}

// AddOutput declares a new named output port with the given contract.
func (n *Node) AddOutput(name string, contract buffer.Contract) (*Output, error) {
	if _, ok := n.outputIndex[name]; ok {
		return nil, fmt.Errorf("%w: output %s.%s", ErrPortExists, n.name, name)
	}
	out := &Output{name: name, node: n, contract: contract}
	n.outputIndex[name] = len(n.outputs)
	n.outputs = append(n.outputs, out)
	n.graph.logger.Debug("node %s: added output %s %s", n.name, name, contract)
	return out, nil
}

// Input returns the input port with the given name.
func (n *Node) Input(name string) (*Input, bool) {
	i, ok := n.inputIndex[name]
	if !ok {
		return nil, false
	}
	return n.inputs[i], true
}

// Output returns the output port with the given name.
func (n *Node) Output(name string) (*Output, bool) {
	i, ok := n.outputIndex[name]
	if !ok {
		return nil, false
	}
	return n.outputs[i], true
}

// Inputs returns the node's input ports in declaration order. The returned
// slice must not be modified.
func (n *Node) Inputs() []*Input {
	return n.inputs
}

// Outputs returns the node's output ports in declaration order. The returned
// slice must not be modified.
func (n *Node) Outputs() []*Output {
	return n.outputs
}

// String returns a short description of the node for logging.
func (n *Node) String() string {
	return fmt.Sprintf("Node %s: ->[%d],[%d]->", n.name, len(n.inputs), len(n.outputs))
}
