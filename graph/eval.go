package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lazygraph/lazygraph/buffer"
)

// evaluation is the per-call state of one top-level Value request. It
// de-duplicates in-flight evaluation by node identity so that a diamond
// dependency evaluates the shared ancestor exactly once per pass.
type evaluation struct {
	g        *Graph
	parallel bool

	mu      chan struct{} // binary semaphore guarding tickets
	tickets map[*Node]*ticket
}

// ticket tracks one node's evaluation within a pass. In a parallel pass a
// second arrival waits on done; in a sequential pass a second arrival before
// completion means the descent re-entered an in-progress node, which the
// acyclic invariant makes unreachable and is treated as fatal.
type ticket struct {
	done chan struct{}
	err  error
}

func newEvaluation(g *Graph, parallel bool) *evaluation {
	e := &evaluation{
		g:        g,
		parallel: parallel,
		mu:       make(chan struct{}, 1),
		tickets:  make(map[*Node]*ticket),
	}
	e.mu <- struct{}{}
	return e
}

func (e *evaluation) lock()   { <-e.mu }
func (e *evaluation) unlock() { e.mu <- struct{}{} }

// pull resolves an output's value, descending depth-first into the dirty
// portion of the upstream chain.
func (e *evaluation) pull(ctx context.Context, out *Output) (*buffer.Buffer, error) {
	n := out.node

	// Fast path: clean node with a published value.
	if !n.dirty.Load() {
		if v := out.value.Load(); v != nil {
			return v, nil
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.lock()
	t, ok := e.tickets[n]
	if ok {
		e.unlock()
		if !e.parallel {
			select {
			case <-t.done:
				// Finished earlier in this pass; reuse its result.
			default:
				panic(fmt.Sprintf(
					"lazygraph: re-entered node %q mid-evaluation; graph acyclicity invariant violated",
					n.name))
			}
		} else {
			select {
			case <-t.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if t.err != nil {
			return nil, t.err
		}
		return out.value.Load(), nil
	}
	t = &ticket{done: make(chan struct{})}
	e.tickets[n] = t
	e.unlock()

	t.err = e.evaluateNode(ctx, n)
	close(t.done)
	if t.err != nil {
		return nil, t.err
	}
	return out.value.Load(), nil
}

// evaluateNode resolves every input of the node, then runs its evaluation
// procedure exactly once and publishes the results atomically.
func (e *evaluation) evaluateNode(ctx context.Context, n *Node) error {
	// Taints that land while this pass is resolving inputs must survive the
	// publication below, so the pass records the generation it computes from.
	gen := n.taintGen.Load()

	resolved, err := e.resolveInputs(ctx, n)
	if err != nil {
		return err
	}

	n.evalMu.Lock()
	defer n.evalMu.Unlock()

	// A concurrent pass may have finished the node while this one resolved
	// its inputs.
	if !n.dirty.Load() {
		return nil
	}

	e.g.notify(ctx, EvalEventStart, n.name, nil)
	var span *TraceSpan
	if e.g.tracer != nil {
		span = e.g.tracer.StartSpan(ctx, TraceEventNodeEval, n.name)
	}
	start := time.Now()

	outs, err := n.evaluator.Evaluate(ctx, resolved)
	if err != nil {
		err = wrapEvalError(n, err)
	} else if len(outs) != len(n.outputs) {
		err = &EvaluationError{
			Node:  n.name,
			Cause: fmt.Errorf("evaluator returned %d buffers for %d outputs", len(outs), len(n.outputs)),
		}
	}

	var fixed []buffer.Contract
	if err == nil {
		// Check every output contract before publishing anything: a failed or
		// cancelled evaluation must leave previous values and flags untouched.
		fixed = make([]buffer.Contract, len(outs))
		for i, out := range n.outputs {
			c, cerr := out.contract.FixFrom(outs[i])
			if cerr != nil {
				err = &ContractViolationError{Node: n.name, Output: out.name, Cause: cerr}
				break
			}
			fixed[i] = c
		}
	}

	if err != nil {
		e.g.logger.Debug("graph %s: node %s failed after %s: %v", e.g.name, n.name, time.Since(start), err)
		e.g.notify(ctx, EvalEventError, n.name, err)
		if span != nil {
			e.g.tracer.EndSpan(ctx, span, err)
		}
		return err
	}

	var changed []*Output
	for i, out := range n.outputs {
		prev := out.value.Load()
		out.contract = fixed[i]
		out.value.Store(outs[i])
		if prev != nil && !prev.Equal(outs[i]) {
			changed = append(changed, out)
		}
	}
	// A taint that arrived after the inputs were read refers to state this
	// pass never saw; the node must stay dirty for the next request.
	if n.taintGen.Load() == gen {
		n.dirty.Store(false)
	}
	n.evalCount.Add(1)

	// Republishing a different value invalidates whatever was computed from
	// the old one.
	for _, out := range changed {
		e.retaintConsumers(out)
	}

	e.g.logger.Debug("graph %s: evaluated node %s in %s", e.g.name, n.name, time.Since(start))
	e.g.notify(ctx, EvalEventComplete, n.name, nil)
	if span != nil {
		e.g.tracer.EndSpan(ctx, span, nil)
	}
	return nil
}

// retaintConsumers marks the consumers of a republished output dirty. A
// consumer already claimed in this pass is skipped: the descent resolves the
// producer before the consumer runs, so a claimed consumer computes from the
// republished value rather than the stale one.
func (e *evaluation) retaintConsumers(out *Output) {
	e.lock()
	queue := make([]*Node, 0, len(out.consumers))
	for _, in := range out.consumers {
		if _, claimed := e.tickets[in.node]; claimed {
			continue
		}
		queue = append(queue, in.node)
	}
	e.unlock()
	e.g.taintDownstream(queue)
}

// resolveInputs pulls the producing output of every input. An unconnected
// input falls back to its default; without one the descent fails with
// *UnresolvedInputError.
func (e *evaluation) resolveInputs(ctx context.Context, n *Node) ([]*buffer.Buffer, error) {
	resolved := make([]*buffer.Buffer, len(n.inputs))

	if e.parallel && connectedInputs(n) > 1 {
		return e.resolveInputsParallel(ctx, n)
	}

	for i, in := range n.inputs {
		switch {
		case in.source != nil:
			v, err := e.pull(ctx, in.source)
			if err != nil {
				return nil, err
			}
			resolved[i] = v
		case in.def != nil:
			resolved[i] = in.def
		default:
			return nil, &UnresolvedInputError{Node: n.name, Input: in.name}
		}
	}
	return resolved, nil
}

func connectedInputs(n *Node) int {
	count := 0
	for _, in := range n.inputs {
		if in.source != nil {
			count++
		}
	}
	return count
}

// wrapEvalError keeps the engine's own error types intact and wraps anything
// else coming out of an evaluation procedure.
func wrapEvalError(n *Node, err error) error {
	var io *UpstreamIOError
	var unresolved *UnresolvedInputError
	var contract *ContractViolationError
	var eval *EvaluationError
	if errors.As(err, &io) || errors.As(err, &unresolved) ||
		errors.As(err, &contract) || errors.As(err, &eval) {
		return err
	}
	return &EvaluationError{Node: n.name, Cause: err}
}
