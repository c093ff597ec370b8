// Package dag defines the language-neutral dataflow intermediate
// representation produced by lowering.  Nodes live in a flat indexed
// slice and edges reference them by index, so the graph holds no
// cyclic object references and neighbour lookup is O(1) after a small
// preprocessing pass.
package dag

import (
	"fmt"

	"github.com/segmentio/ksuid"
)

type NodeKind string

const (
	Function  NodeKind = "Function"
	Constant  NodeKind = "Constant"
	Primitive NodeKind = "Primitive"
	SubGraph  NodeKind = "SubGraph"
)

// Node is one computation vertex.  Port names are unique within a
// node.  The payload fields are kind-specific: Op for primitives,
// Value for constants, Body for subgraphs, and Callee for function
// invocations.
type Node struct {
	Tag     string   `json:"tag"`
	Name    string   `json:"name"`
	Kind    NodeKind `json:"kind"`
	Inputs  []string `json:"inputs,omitempty"`
	Outputs []string `json:"outputs"`
	Op      string   `json:"op,omitempty"`
	Value   *Literal `json:"value,omitempty"`
	Body    *Graph   `json:"body,omitempty"`
	Callee  string   `json:"callee,omitempty"`
}

// Literal is a constant payload.
type Literal struct {
	Type  string  `json:"type"` // int, float, string, bool
	Int   int64   `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Str   string  `json:"str,omitempty"`
	Bool  bool    `json:"bool,omitempty"`
}

// Port addresses one named slot on a node by node index.
type Port struct {
	Node int    `json:"node"`
	Port string `json:"port"`
}

func (p Port) String() string { return fmt.Sprintf("%d:%s", p.Node, p.Port) }

// Edge carries the value at a source port to a target port.  Fan-out
// from a source is unbounded; fan-in to a target is at most one.
type Edge struct {
	SourceNode int    `json:"source_node"`
	SourcePort string `json:"source_port"`
	TargetNode int    `json:"target_node"`
	TargetPort string `json:"target_port"`
}

func (e Edge) Source() Port { return Port{e.SourceNode, e.SourcePort} }
func (e Edge) Target() Port { return Port{e.TargetNode, e.TargetPort} }

// ExternalInput binds a named free value, evaluated at execution
// start, to a target port.
type ExternalInput struct {
	Name   string `json:"name"`
	Target Port   `json:"target"`
}

// Output declares a port whose value is collected after execution.
type Output struct {
	Name   string `json:"name"`
	Source Port   `json:"source"`
}

// Graph is immutable once lowering returns it.
type Graph struct {
	Nodes   []*Node         `json:"nodes"`
	Edges   []Edge          `json:"edges"`
	Externs []ExternalInput `json:"external_inputs,omitempty"`
	Outputs []Output        `json:"outputs,omitempty"`
}

// Add appends a node, assigning it a fresh tag, and returns its index.
func (g *Graph) Add(n *Node) int {
	if n.Tag == "" {
		n.Tag = ksuid.New().String()
	}
	g.Nodes = append(g.Nodes, n)
	return len(g.Nodes) - 1
}

// Connect adds an edge.  The target port must not already have an
// inbound edge: dataflow fan-in is exactly one.
func (g *Graph) Connect(src, dst Port) error {
	for _, e := range g.Edges {
		if e.Target() == dst {
			return fmt.Errorf("port %s of node %q already has a producer", dst.Port, g.Nodes[dst.Node].Name)
		}
	}
	g.Edges = append(g.Edges, Edge{src.Node, src.Port, dst.Node, dst.Port})
	return nil
}

// Inbound returns the edge terminating at each target port.
func (g *Graph) Inbound() map[Port]Edge {
	in := make(map[Port]Edge, len(g.Edges))
	for _, e := range g.Edges {
		in[e.Target()] = e
	}
	return in
}

// Successors returns, for each node index, the indexes of nodes fed by
// its outputs, in edge insertion order with duplicates preserved.
func (g *Graph) Successors() [][]int {
	succ := make([][]int, len(g.Nodes))
	for _, e := range g.Edges {
		succ[e.SourceNode] = append(succ[e.SourceNode], e.TargetNode)
	}
	return succ
}
