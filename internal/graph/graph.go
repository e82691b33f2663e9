// Package graph implements the orchestration graph: a directed graph of
// stages sharing conversation state, with concurrent fan-out, fan-in
// barriers, and conditional routing.
//
// The graph is plain data (nodes, static edges, and per-node routing
// functions) built once at startup and interpreted by the Executor. Stage
// logic stays testable independent of the wiring.
package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/soyeahso/voyant/internal/domain"
)

// Start and End are the implicit entry and exit nodes.
const (
	Start = "__start__"
	End   = "__end__"
)

// Update is the partial state change a stage produces. Fields left zero are
// untouched on apply, so concurrent stages that write disjoint fields merge
// commutatively.
type Update struct {
	Intent      *domain.Intent
	Preferences *domain.Preferences
	Messages    []domain.Message
}

// Apply folds the update into the state. Only the executor calls this.
func (u Update) Apply(state *domain.ConversationState) {
	if u.Intent != nil {
		state.Intent = *u.Intent
	}
	if u.Preferences != nil {
		state.Preferences = *u.Preferences
	}
	state.Messages = append(state.Messages, u.Messages...)
}

// StageFunc transforms a state snapshot into a partial update. It must not
// mutate the snapshot.
type StageFunc func(ctx context.Context, state domain.ConversationState) (Update, error)

// RouteFunc inspects state after its node ran and names the single next node
// (or End). A routing error is a contract violation and aborts the turn.
type RouteFunc func(state *domain.ConversationState) (string, error)

// Graph is the orchestration graph definition.
type Graph struct {
	nodes   map[string]StageFunc
	edges   map[string][]string  // static edges, source → targets
	routers map[string]RouteFunc // conditional edges, source → router
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes:   make(map[string]StageFunc),
		edges:   make(map[string][]string),
		routers: make(map[string]RouteFunc),
	}
}

// AddNode registers a stage under the given name.
func (g *Graph) AddNode(name string, fn StageFunc) error {
	if name == Start || name == End {
		return fmt.Errorf("graph: %q is reserved", name)
	}
	if _, ok := g.nodes[name]; ok {
		return fmt.Errorf("graph: duplicate node %q", name)
	}
	g.nodes[name] = fn
	return nil
}

// AddEdge adds a static edge. from may be Start; to may be End.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = append(g.edges[from], to)
}

// AddConditionalEdge attaches a routing function to a node. After the node
// runs, the router picks exactly one successor.
func (g *Graph) AddConditionalEdge(from string, route RouteFunc) error {
	if _, ok := g.routers[from]; ok {
		return fmt.Errorf("graph: node %q already has a conditional edge", from)
	}
	g.routers[from] = route
	return nil
}

// Validate checks the graph is runnable: all edge endpoints exist, Start has
// at least one successor, and the static edges alone contain no cycle (the
// only legal loops are the ones a conditional edge can break out of).
func (g *Graph) Validate() error {
	if len(g.edges[Start]) == 0 {
		return fmt.Errorf("graph: no edges from start")
	}
	for from, tos := range g.edges {
		if from != Start {
			if _, ok := g.nodes[from]; !ok {
				return fmt.Errorf("graph: edge from unknown node %q", from)
			}
		}
		for _, to := range tos {
			if to == Start {
				return fmt.Errorf("graph: edge into start from %q", from)
			}
			if to != End {
				if _, ok := g.nodes[to]; !ok {
					return fmt.Errorf("graph: edge from %q to unknown node %q", from, to)
				}
			}
		}
	}
	for from := range g.routers {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("graph: conditional edge on unknown node %q", from)
		}
	}
	return g.detectStaticCycle()
}

// detectStaticCycle runs a depth-first search over static edges only.
func (g *Graph) detectStaticCycle() error {
	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	mark := make(map[string]int)

	var visit func(n string) error
	visit = func(n string) error {
		switch mark[n] {
		case done:
			return nil
		case inStack:
			return fmt.Errorf("graph: static cycle involving node %q", n)
		}
		mark[n] = inStack
		for _, m := range g.edges[n] {
			if m == End {
				continue
			}
			if err := visit(m); err != nil {
				return err
			}
		}
		mark[n] = done
		return nil
	}

	for n := range g.nodes {
		if err := visit(n); err != nil {
			return err
		}
	}
	return nil
}

// Nodes returns the node names in sorted order.
func (g *Graph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for n := range g.nodes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Successors returns the static-edge targets of a node.
func (g *Graph) Successors(from string) []string {
	return g.edges[from]
}
