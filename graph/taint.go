package graph

import "context"

// Invalidate marks the output's owning node dirty and propagates the taint
// breadth-first over the consumer registrations, visiting each downstream
// node at most once. Propagation short-circuits at nodes that are already
// dirty: their downstream was transitively marked when they were tainted.
// Invalidation never recomputes values; invalidating an already-dirty output
// is a no-op beyond re-confirming the flag.
func (g *Graph) Invalidate(out *Output) {
	if out == nil || out.node.graph != g {
		return
	}
	out.node.taintGen.Add(1)
	out.node.dirty.Store(true)
	g.logger.Debug("graph %s: invalidated %s", g.name, out)
	g.notify(context.Background(), EvalEventTaint, out.node.name, nil)
	g.taintDownstream(consumerNodes(out))
}

// taintFrom marks a node and its downstream dirty. Used when the node's own
// wiring changed (connect, disconnect, default update).
func (g *Graph) taintFrom(n *Node) {
	n.taintGen.Add(1)
	if n.dirty.Load() {
		return
	}
	n.dirty.Store(true)
	g.notify(context.Background(), EvalEventTaint, n.name, nil)
	queue := make([]*Node, 0)
	for _, o := range n.outputs {
		queue = append(queue, consumerNodes(o)...)
	}
	g.taintDownstream(queue)
}

// taintDownstream is the breadth-first marking pass. Each node is visited at
// most once and an already-dirty node stops the descent along its branch.
// The generation counter is bumped even on already-dirty nodes so that an
// evaluation pass mid-flight on one of them does not clear the flag.
func (g *Graph) taintDownstream(queue []*Node) {
	visited := make(map[*Node]bool)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n] {
			continue
		}
		visited[n] = true
		n.taintGen.Add(1)
		if n.dirty.Load() {
			continue
		}
		n.dirty.Store(true)
		g.notify(context.Background(), EvalEventTaint, n.name, nil)
		for _, o := range n.outputs {
			queue = append(queue, consumerNodes(o)...)
		}
	}
}

func consumerNodes(out *Output) []*Node {
	nodes := make([]*Node, 0, len(out.consumers))
	for _, in := range out.consumers {
		nodes = append(nodes, in.node)
	}
	return nodes
}
