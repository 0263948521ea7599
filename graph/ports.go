package graph

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/lazygraph/lazygraph/buffer"
)

// Output is a producing port: a named, owned slot on a node that caches a
// computed value and fans out to consumer inputs. Consumer registrations are
// non-owning back-references scanned only during taint propagation.
type Output struct {
	name string
	node *Node

	// contract starts as declared and is narrowed to the exact dtype/shape of
	// the first published buffer. Once fixed it is never loosened again.
	contract buffer.Contract

	value atomic.Pointer[buffer.Buffer]

	consumers []*Input
}

// Name returns the port name, unique within its node's outputs.
func (o *Output) Name() string {
	return o.name
}

// Node returns the owning node.
func (o *Output) Node() *Node {
	return o.node
}

// Contract returns the port's current type contract.
func (o *Output) Contract() buffer.Contract {
	return o.contract
}

// Dirty reports whether the cached value, if any, must not be trusted.
func (o *Output) Dirty() bool {
	return o.node.dirty.Load() || o.value.Load() == nil
}

// Peek returns the cached buffer without triggering any evaluation. It
// returns nil when no value has been published yet. Read-only collaborators
// use this to inspect state without mutating dirty flags or caches.
func (o *Output) Peek() *buffer.Buffer {
	return o.value.Load()
}

// Consumers returns the inputs currently attached to this output. The
// returned slice must not be modified.
func (o *Output) Consumers() []*Input {
	return o.consumers
}

// Value returns the output's buffer, evaluating only the dirty portion of the
// upstream dependency chain. Clean cached values are returned immediately.
// All descent errors abort the whole call and leave previous cached values
// and dirty flags untouched.
func (o *Output) Value(ctx context.Context) (*buffer.Buffer, error) {
	return newEvaluation(o.node.graph, false).pull(ctx, o)
}

// ValueParallel behaves like Value but resolves independent sibling inputs in
// parallel tasks joined before each node's own evaluation.
func (o *Output) ValueParallel(ctx context.Context) (*buffer.Buffer, error) {
	return newEvaluation(o.node.graph, true).pull(ctx, o)
}

// Invalidate marks the output dirty and propagates the taint to every
// downstream node, without recomputing anything.
func (o *Output) Invalidate() {
	o.node.graph.Invalidate(o)
}

// String returns a short description of the port for logging.
func (o *Output) String() string {
	return fmt.Sprintf("%s.%s", o.node.name, o.name)
}

func (o *Output) addConsumer(in *Input) {
	o.consumers = append(o.consumers, in)
}

func (o *Output) removeConsumer(in *Input) {
	if i := slices.Index(o.consumers, in); i >= 0 {
		o.consumers = slices.Delete(o.consumers, i, i+1)
	}
}

// Input is a consuming port: a named slot on a node referencing at most one
// producing output. An input never caches a value itself; at evaluation time
// it re-reads the producing output's current value.
type Input struct {
	name string
	node *Node

	contract buffer.Contract

	// source is the producing output, or nil while the input dangles.
	source *Output

	// def is the optional value used when the input is unconnected.
	def *buffer.Buffer
}

// Name returns the port name, unique within its node's inputs.
func (in *Input) Name() string {
	return in.name
}

// Node returns the owning node.
func (in *Input) Node() *Node {
	return in.node
}

// Contract returns the port's current type contract.
func (in *Input) Contract() buffer.Contract {
	return in.contract
}

// Source returns the producing output, or nil when the input is unconnected.
func (in *Input) Source() *Output {
	return in.source
}

// Connected reports whether the input references a producing output.
func (in *Input) Connected() bool {
	return in.source != nil
}

// Default returns the default buffer used when the input is unconnected, or
// nil when none is set.
func (in *Input) Default() *buffer.Buffer {
	return in.def
}

// SetDefault installs a default value for the unconnected state and marks the
// owning node dirty.
func (in *Input) SetDefault(def *buffer.Buffer) error {
	if err := in.contract.Check(def); err != nil {
		return fmt.Errorf("default for input %s: %w", in, err)
	}
	in.def = def
	in.node.graph.taintFrom(in.node)
	return nil
}

// String returns a short description of the port for logging.
func (in *Input) String() string {
	return fmt.Sprintf("%s.%s", in.node.name, in.name)
}
