// Package graph implements the intent graph: a DAG of IntentNode values
// keyed by ids.IntentId, owned exclusively by the session scheduler. The
// graph never executes an intent; it only tracks which intents are ready
// to dispatch given their declared dependencies, and which have already
// completed (so a replayed or duplicated ToolCompleted event cannot
// double-apply).
package graph

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agentkernel/agentkernel/agent/ids"
	"github.com/agentkernel/agentkernel/agent/kernel"
)

// Status is the lifecycle state of one IntentNode.
type Status int

const (
	StatusPending Status = iota
	StatusReady
	StatusDispatched
	StatusCompleted
	StatusFailed
	StatusCancelled
)

// IntentNode is one vertex of the intent graph.
type IntentNode struct {
	Id     ids.IntentId
	Intent kernel.Intent
	Deps   []ids.IntentId
	Status Status
}

// ContractError is returned by Insert when a node would violate the
// graph's structural invariants.
type ContractError struct {
	Kind ContractErrorKind
	Id   ids.IntentId
	Dep  ids.IntentId
}

// ContractErrorKind discriminates the concrete contract violation.
type ContractErrorKind int

const (
	// CyclicDependency means inserting the node would create a cycle.
	CyclicDependency ContractErrorKind = iota
	// UnknownDependency means the node depends on an id the graph has
	// never seen.
	UnknownDependency
)

func (e *ContractError) Error() string {
	switch e.Kind {
	case CyclicDependency:
		return fmt.Sprintf("intent graph: inserting %s would create a cycle through dependency %s", e.Id, e.Dep)
	case UnknownDependency:
		return fmt.Sprintf("intent graph: intent %s depends on unknown intent %s", e.Id, e.Dep)
	default:
		return "intent graph: contract violation"
	}
}

// ErrAlreadyCompleted is returned by Complete when the node was already
// marked completed; callers may treat this as a no-op since completion is
// idempotent by design.
var ErrAlreadyCompleted = errors.New("intent graph: node already completed")

// IntentGraph is a DAG of IntentNode values. It is not safe for concurrent
// use; the session scheduler is its sole owner and serializes all access
// through its leader loop.
type IntentGraph struct {
	nodes     map[ids.IntentId]*IntentNode
	completed map[ids.IntentId]bool
}

// New returns an empty IntentGraph.
func New() *IntentGraph {
	return &IntentGraph{
		nodes:     make(map[ids.IntentId]*IntentNode),
		completed: make(map[ids.IntentId]bool),
	}
}

// Insert adds a new node to the graph. It rejects the insertion outright
// (leaving the graph unchanged) if any dependency is unknown, or if the
// dependency set would introduce a cycle.
func (g *IntentGraph) Insert(id ids.IntentId, intent kernel.Intent, deps []ids.IntentId) error {
	for _, dep := range deps {
		if _, ok := g.nodes[dep]; !ok {
			return &ContractError{Kind: UnknownDependency, Id: id, Dep: dep}
		}
	}

	node := &IntentNode{Id: id, Intent: intent, Deps: append([]ids.IntentId{}, deps...), Status: StatusPending}
	prev, existed := g.nodes[id]
	g.nodes[id] = node

	if cyc, ok := g.findCycleFrom(id); ok {
		if existed {
			g.nodes[id] = prev
		} else {
			delete(g.nodes, id)
		}
		return &ContractError{Kind: CyclicDependency, Id: id, Dep: cyc}
	}

	g.refreshReady(node)
	return nil
}

// findCycleFrom walks the dependency graph starting at start and reports
// the first id it revisits, if any.
func (g *IntentGraph) findCycleFrom(start ids.IntentId) (ids.IntentId, bool) {
	visited := map[ids.IntentId]bool{}
	var visit func(id ids.IntentId, path map[ids.IntentId]bool) (ids.IntentId, bool)
	visit = func(id ids.IntentId, path map[ids.IntentId]bool) (ids.IntentId, bool) {
		if path[id] {
			return id, true
		}
		if visited[id] {
			return ids.IntentId(0), false
		}
		visited[id] = true
		path[id] = true
		node, ok := g.nodes[id]
		if !ok {
			return ids.IntentId(0), false
		}
		for _, dep := range node.Deps {
			if cyc, found := visit(dep, path); found {
				return cyc, true
			}
		}
		delete(path, id)
		return ids.IntentId(0), false
	}
	return visit(start, map[ids.IntentId]bool{})
}

// refreshReady promotes node to Ready if every dependency is completed.
func (g *IntentGraph) refreshReady(node *IntentNode) {
	if node.Status != StatusPending {
		return
	}
	for _, dep := range node.Deps {
		if !g.completed[dep] {
			return
		}
	}
	node.Status = StatusReady
}

// Ready returns the ids of all nodes currently Ready to dispatch, ordered
// deterministically by id so that replay always yields the same dispatch
// order given the same graph contents.
func (g *IntentGraph) Ready() []ids.IntentId {
	var out []ids.IntentId
	for id, node := range g.nodes {
		if node.Status == StatusReady {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// MarkDispatched transitions a Ready node to Dispatched.
func (g *IntentGraph) MarkDispatched(id ids.IntentId) {
	if node, ok := g.nodes[id]; ok && node.Status == StatusReady {
		node.Status = StatusDispatched
	}
}

// Complete marks id as completed and promotes any now-unblocked dependents
// to Ready. Completion is idempotent: completing an already-completed id
// returns ErrAlreadyCompleted and otherwise changes nothing.
func (g *IntentGraph) Complete(id ids.IntentId) error {
	if g.completed[id] {
		return ErrAlreadyCompleted
	}
	g.completed[id] = true
	if node, ok := g.nodes[id]; ok {
		node.Status = StatusCompleted
	}
	for _, node := range g.nodes {
		g.refreshReady(node)
	}
	return nil
}

// Fail marks id as Failed and cascades cancellation to every node that
// (transitively) depends on it, since their precondition can now never be
// satisfied.
func (g *IntentGraph) Fail(id ids.IntentId) []ids.IntentId {
	node, ok := g.nodes[id]
	if !ok {
		return nil
	}
	node.Status = StatusFailed

	var cancelled []ids.IntentId
	var cascade func(target ids.IntentId)
	cascade = func(target ids.IntentId) {
		for depID, depNode := range g.nodes {
			if depNode.Status == StatusCancelled || depNode.Status == StatusCompleted || depNode.Status == StatusFailed {
				continue
			}
			for _, d := range depNode.Deps {
				if d == target {
					depNode.Status = StatusCancelled
					cancelled = append(cancelled, depID)
					cascade(depID)
					break
				}
			}
		}
	}
	cascade(id)
	sort.Slice(cancelled, func(i, j int) bool { return cancelled[i].Less(cancelled[j]) })
	return cancelled
}

// Node returns the node for id, if present.
func (g *IntentGraph) Node(id ids.IntentId) (IntentNode, bool) {
	node, ok := g.nodes[id]
	if !ok {
		return IntentNode{}, false
	}
	return *node, true
}

// Len reports how many nodes the graph currently holds.
func (g *IntentGraph) Len() int {
	return len(g.nodes)
}
