package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Exporter renders a graph's node/edge structure in different diagram
// formats. It reads the structure only and never mutates dirty flags or
// caches, so it is safe to run next to evaluation.
type Exporter struct {
	graph *Graph
}

// NewExporter creates a new diagram exporter for the given graph.
func NewExporter(g *Graph) *Exporter {
	return &Exporter{graph: g}
}

// portEdge is one rendered edge with its port labels.
type portEdge struct {
	from, to      string
	output, input string
}

func (ge *Exporter) edges() []portEdge {
	var edges []portEdge
	for _, n := range ge.graph.nodes {
		for _, out := range n.outputs {
			for _, in := range out.consumers {
				edges = append(edges, portEdge{
					from:   n.name,
					to:     in.node.name,
					output: out.name,
					input:  in.name,
				})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})
	return edges
}

// mermaidIDs assigns deterministic identifiers over the sorted node names.
// Names appear in labels only, since a name with spaces or hyphens is not a
// valid Mermaid identifier.
func mermaidIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	for i, name := range names {
		ids[name] = fmt.Sprintf("n%d", i)
	}
	return ids
}

func mermaidLabel(s string) string {
	return strings.ReplaceAll(s, `"`, "#quot;")
}

// MermaidOptions defines configuration for Mermaid diagram generation.
type MermaidOptions struct {
	// Direction of the flowchart (e.g. "TD", "LR").
	Direction string
}

// DrawMermaid generates a Mermaid diagram representation of the graph.
func (ge *Exporter) DrawMermaid() string {
	return ge.DrawMermaidWithOptions(MermaidOptions{Direction: "LR"})
}

// DrawMermaidWithOptions generates a Mermaid diagram with custom options.
// Dirty nodes are highlighted.
func (ge *Exporter) DrawMermaidWithOptions(opts MermaidOptions) string {
	var sb strings.Builder

	direction := opts.Direction
	if direction == "" {
		direction = "LR"
	}
	sb.WriteString(fmt.Sprintf("flowchart %s\n", direction))

	names := make([]string, 0, len(ge.graph.nodes))
	for _, n := range ge.graph.nodes {
		names = append(names, n.name)
	}
	sort.Strings(names)

	ids := mermaidIDs(names)
	for _, name := range names {
		n := ge.graph.byName[name]
		sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", ids[name], mermaidLabel(name)))
		if n.dirty.Load() {
			sb.WriteString(fmt.Sprintf("    style %s fill:#FFB6C1\n", ids[name]))
		}
	}

	for _, e := range ge.edges() {
		sb.WriteString(fmt.Sprintf("    %s -- \"%s→%s\" --> %s\n",
			ids[e.from], mermaidLabel(e.output), mermaidLabel(e.input), ids[e.to]))
	}

	return sb.String()
}

// DrawDOT generates a DOT (Graphviz) representation of the graph.
func (ge *Exporter) DrawDOT() string {
	var sb strings.Builder

	sb.WriteString("digraph G {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [shape=box];\n")

	names := make([]string, 0, len(ge.graph.nodes))
	for _, n := range ge.graph.nodes {
		names = append(names, n.name)
	}
	sort.Strings(names)

	// Names are always quoted: DOT bare identifiers cannot carry spaces or
	// hyphens.
	for _, name := range names {
		n := ge.graph.byName[name]
		if n.dirty.Load() {
			sb.WriteString(fmt.Sprintf("    %q [style=filled, fillcolor=lightpink];\n", name))
		} else {
			sb.WriteString(fmt.Sprintf("    %q;\n", name))
		}
	}

	for _, e := range ge.edges() {
		sb.WriteString(fmt.Sprintf("    %q -> %q [label=\"%s→%s\"];\n", e.from, e.to, e.output, e.input))
	}

	sb.WriteString("}\n")
	return sb.String()
}

// DrawASCII generates an ASCII tree of the graph starting from its source
// nodes (nodes without connected inputs).
func (ge *Exporter) DrawASCII() string {
	var sb strings.Builder
	sb.WriteString("Dataflow:\n")

	var roots []string
	for _, n := range ge.graph.nodes {
		if connectedInputs(n) == 0 {
			roots = append(roots, n.name)
		}
	}
	sort.Strings(roots)

	visited := make(map[string]bool)
	for i, root := range roots {
		ge.drawASCIINode(root, "", i == len(roots)-1, visited, &sb)
	}
	return sb.String()
}

func (ge *Exporter) drawASCIINode(name string, prefix string, isLast bool, visited map[string]bool, sb *strings.Builder) {
	connector := "├──"
	nextPrefix := prefix + "│   "
	if isLast {
		connector = "└──"
		nextPrefix = prefix + "    "
	}

	n := ge.graph.byName[name]
	marker := ""
	if n != nil && n.dirty.Load() {
		marker = " *"
	}

	if visited[name] {
		sb.WriteString(fmt.Sprintf("%s%s %s (shared)\n", prefix, connector, name))
		return
	}
	visited[name] = true
	sb.WriteString(fmt.Sprintf("%s%s %s%s\n", prefix, connector, name, marker))

	if n == nil {
		return
	}
	var children []string
	seen := make(map[string]bool)
	for _, out := range n.outputs {
		for _, in := range out.consumers {
			if !seen[in.node.name] {
				seen[in.node.name] = true
				children = append(children, in.node.name)
			}
		}
	}
	sort.Strings(children)

	for i, child := range children {
		ge.drawASCIINode(child, nextPrefix, i == len(children)-1, visited, sb)
	}
}
