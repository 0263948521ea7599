package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/lazygraph/lazygraph/buffer"
)

// Parameter is a settable value feeding a source node. Changing it
// invalidates the source's output so that only the affected subgraph is
// recomputed on the next request.
type Parameter struct {
	name string
	node *Node
	out  *Output

	mu      sync.Mutex
	staged  *buffer.Buffer
	changes uint64
}

// AddParameter creates a parameter-backed source node with a single output
// "value" holding a 1-D float64 array of the given values. The contract is
// fixed to the initial length; setting a different length later fails at the
// next evaluation.
func (g *Graph) AddParameter(name string, values ...float64) (*Parameter, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("parameter %s: at least one value is required", name)
	}
	if _, ok := g.parameters[name]; ok {
		return nil, fmt.Errorf("%w: parameter %s", ErrNodeExists, name)
	}

	p := &Parameter{name: name, staged: buffer.Vector(values...)}
	node, out, err := g.AddSource(name, buffer.VectorOf(len(values)), IngestorFunc(
		func(context.Context) (*buffer.Buffer, error) {
			p.mu.Lock()
			defer p.mu.Unlock()
			return p.staged, nil
		}))
	if err != nil {
		return nil, err
	}
	p.node = node
	p.out = out
	g.parameters[name] = p
	return p, nil
}

// Parameter returns the parameter with the given name.
func (g *Graph) Parameter(name string) (*Parameter, bool) {
	p, ok := g.parameters[name]
	return p, ok
}

// Parameters returns the names of all registered parameters.
func (g *Graph) Parameters() []string {
	names := make([]string, 0, len(g.parameters))
	for name := range g.parameters {
		names = append(names, name)
	}
	return names
}

// Name returns the parameter's name.
func (p *Parameter) Name() string {
	return p.name
}

// Node returns the backing source node.
func (p *Parameter) Node() *Node {
	return p.node
}

// Output returns the source node's output port, for wiring consumers.
func (p *Parameter) Output() *Output {
	return p.out
}

// Set stages new values and invalidates the source's output. Nothing is
// recomputed until a downstream value is requested.
func (p *Parameter) Set(values ...float64) {
	p.SetBuffer(buffer.Vector(values...))
}

// SetBuffer stages an arbitrary buffer as the parameter's next value.
func (p *Parameter) SetBuffer(b *buffer.Buffer) {
	p.mu.Lock()
	p.staged = b
	p.changes++
	p.mu.Unlock()
	p.out.Invalidate()
}

// Changes returns how many times the parameter has been set since creation.
func (p *Parameter) Changes() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changes
}

// String returns a short description of the parameter for logging.
func (p *Parameter) String() string {
	return fmt.Sprintf("Parameter %s", p.name)
}
