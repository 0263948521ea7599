package graph

import (
	"errors"
	"fmt"

	"github.com/lazygraph/lazygraph/buffer"
)

var (
	// ErrNodeExists is returned when a node name is already taken in the graph.
	ErrNodeExists = errors.New("node already exists")

	// ErrNodeNotFound is returned when a node is not found in the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrPortExists is returned when an input or output name is already taken
	// on a node.
	ErrPortExists = errors.New("port already exists")

	// ErrForeignPort is returned when a port from another graph is passed to
	// a wiring operation.
	ErrForeignPort = errors.New("port belongs to a different graph")
)

// CycleError is returned by Connect when the requested edge would create a
// path from the producer node back to itself. The graph is left unchanged.
type CycleError struct {
	// Producer is the node owning the output being connected.
	Producer string
	// Consumer is the node owning the input being connected.
	Consumer string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("connecting %s -> %s would create a cycle", e.Producer, e.Consumer)
}

// TypeMismatchError is returned by Connect when the port contracts are
// incompatible and neither side is open. The graph is left unchanged.
type TypeMismatchError struct {
	Output         string
	Input          string
	OutputContract buffer.Contract
	InputContract  buffer.Contract
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cannot connect %s %s to %s %s: incompatible contracts",
		e.Output, e.OutputContract, e.Input, e.InputContract)
}

// ContractViolationError is returned when a node publishes a buffer that
// violates its output's previously fixed contract. Nothing is published and
// the node remains dirty.
type ContractViolationError struct {
	Node   string
	Output string
	Cause  error
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("node %s violated contract on output %s: %v", e.Node, e.Output, e.Cause)
}

func (e *ContractViolationError) Unwrap() error {
	return e.Cause
}

// UnresolvedInputError is returned when evaluation reaches an input that has
// neither a connection nor a default value.
type UnresolvedInputError struct {
	Node  string
	Input string
}

func (e *UnresolvedInputError) Error() string {
	return fmt.Sprintf("input %s.%s is not connected and has no default", e.Node, e.Input)
}

// UpstreamIOError is returned when an external data-source collaborator fails
// to supply a value at a source node's evaluation. It propagates up through
// Value like any other evaluation failure.
type UpstreamIOError struct {
	Node  string
	Cause error
}

func (e *UpstreamIOError) Error() string {
	return fmt.Sprintf("source %s failed to supply a value: %v", e.Node, e.Cause)
}

func (e *UpstreamIOError) Unwrap() error {
	return e.Cause
}

// EvaluationError wraps a failure of a node's evaluation procedure. The node
// remains dirty and no output is published.
type EvaluationError struct {
	Node  string
	Cause error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation of node %s failed: %v", e.Node, e.Cause)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
