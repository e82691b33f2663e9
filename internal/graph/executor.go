package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/soyeahso/voyant/internal/domain"
	"github.com/soyeahso/voyant/internal/logging"
)

// ErrRouting is a routing contract violation: the graph reached a state the
// wiring does not account for. Fatal for the turn.
var ErrRouting = errors.New("graph: routing contract violation")

// Executor interprets a Graph over a mutable conversation state.
//
// Execution proceeds in supersteps: every node in the current frontier runs
// concurrently against the same immutable snapshot, then all produced
// updates are applied before the next frontier is computed. A node with
// multiple predecessors is triggered at most once per superstep, which gives
// fan-in its barrier for free.
type Executor struct {
	graph     *Graph
	maxVisits int
	log       *logging.Logger
}

// NewExecutor creates an executor. maxVisits bounds how many times any
// single node may run within one turn; the tools loop is the only way to
// revisit a node, so the bound is effectively the tool-round budget plus
// one. Values below one are clamped to one.
func NewExecutor(g *Graph, maxVisits int, log *logging.Logger) (*Executor, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if maxVisits < 1 {
		maxVisits = 1
	}
	return &Executor{graph: g, maxVisits: maxVisits, log: log.Sub("graph")}, nil
}

// Run drives the graph from Start to End, mutating state in place. The
// caller owns state exclusively for the duration of the call.
func (e *Executor) Run(ctx context.Context, state *domain.ConversationState) error {
	visits := make(map[string]int)
	frontier := dedup(e.graph.Successors(Start))
	step := 0

	for len(frontier) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		step++

		for _, n := range frontier {
			visits[n]++
			if visits[n] > e.maxVisits {
				return fmt.Errorf("%w: node %q exceeded %d visits", ErrRouting, n, e.maxVisits)
			}
		}

		e.log.Debug().Int("step", step).Strs("nodes", frontier).Msg("running superstep")

		updates, err := e.runSuperstep(ctx, frontier, state)
		if err != nil {
			return err
		}

		// Apply in frontier order. The stages write disjoint fields, so the
		// order does not affect the result; fixing it keeps runs reproducible.
		for _, n := range frontier {
			updates[n].Apply(state)
		}

		frontier, err = e.nextFrontier(frontier, state)
		if err != nil {
			return err
		}
	}

	e.log.Debug().Int("steps", step).Msg("graph reached end")
	return nil
}

// runSuperstep executes every frontier node concurrently against one shared
// snapshot and collects their updates.
func (e *Executor) runSuperstep(ctx context.Context, frontier []string, state *domain.ConversationState) (map[string]Update, error) {
	snapshot := *state.Clone()
	updates := make(map[string]Update, len(frontier))

	grp, gctx := errgroup.WithContext(ctx)
	results := make([]Update, len(frontier))
	for i, name := range frontier {
		i, name := i, name
		fn := e.graph.nodes[name]
		grp.Go(func() error {
			u, err := fn(gctx, snapshot)
			if err != nil {
				return fmt.Errorf("node %q: %w", name, err)
			}
			results[i] = u
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	for i, name := range frontier {
		updates[name] = results[i]
	}
	return updates, nil
}

// nextFrontier resolves where control flows after a superstep: conditional
// routers pick exactly one successor, static edges trigger all of theirs.
func (e *Executor) nextFrontier(frontier []string, state *domain.ConversationState) ([]string, error) {
	var next []string
	for _, n := range frontier {
		if route, ok := e.graph.routers[n]; ok {
			target, err := route(state)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrRouting, err)
			}
			if target != End {
				if _, ok := e.graph.nodes[target]; !ok {
					return nil, fmt.Errorf("%w: route to unknown node %q", ErrRouting, target)
				}
				next = append(next, target)
			}
			continue
		}
		for _, m := range e.graph.Successors(n) {
			if m != End {
				next = append(next, m)
			}
		}
	}
	return dedup(next), nil
}

// dedup removes duplicates preserving a stable sorted order.
func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0:0]
	for _, n := range names {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out
}
