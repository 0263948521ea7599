package graph

import (
	"context"
	"fmt"
	"sync"

	"github.com/lazygraph/lazygraph/buffer"
)

// SafeGo runs fn in a goroutine tracked by wg, converting a panic into a call
// to onPanic instead of crashing the process.
func SafeGo(wg *sync.WaitGroup, fn func(), onPanic func(v any)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				onPanic(r)
			}
		}()
		fn()
	}()
}

// resolveInputsParallel pulls sibling inputs concurrently and joins them
// before the node's own evaluation. Independent subgraphs share no mutable
// state beyond their own outputs, and a shared ancestor reached from two
// branches is evaluated once: the second arrival waits on the first's ticket.
func (e *evaluation) resolveInputsParallel(ctx context.Context, n *Node) ([]*buffer.Buffer, error) {
	resolved := make([]*buffer.Buffer, len(n.inputs))
	errs := make([]error, len(n.inputs))

	var wg sync.WaitGroup
	for i, in := range n.inputs {
		switch {
		case in.source != nil:
			idx := i
			src := in.source
			SafeGo(&wg, func() {
				resolved[idx], errs[idx] = e.pull(ctx, src)
			}, func(v any) {
				errs[idx] = &EvaluationError{
					Node:  n.name,
					Cause: fmt.Errorf("panic while resolving input %s: %v", n.inputs[idx].name, v),
				}
			})
		case in.def != nil:
			resolved[i] = in.def
		default:
			errs[i] = &UnresolvedInputError{Node: n.name, Input: in.name}
		}
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return resolved, nil
}
