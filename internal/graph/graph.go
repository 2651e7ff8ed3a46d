// Package graph owns the canonical node/edge topology. Positions and
// velocities are owned by the simulation engine; this store only knows
// identity, edges, pinning and zone membership.
package graph

import (
	"bytes"
	"errors"
	"sort"

	"github.com/google/uuid"
)

var (
	ErrNodeNotFound  = errors.New("graphsim: node not found")
	ErrDuplicateEdge = errors.New("graphsim: duplicate edge")
)

// EdgeKind distinguishes traversal-derived edges from user-created ones.
type EdgeKind int

const (
	EdgeHyperlink EdgeKind = iota
	EdgeHistory
	EdgeUserGrouped
)

func (k EdgeKind) String() string {
	switch k {
	case EdgeHyperlink:
		return "hyperlink"
	case EdgeHistory:
		return "history"
	case EdgeUserGrouped:
		return "user_grouped"
	}
	return "unknown"
}

// ParseEdgeKind maps a serialized kind name back to its value. Unknown
// names fall back to hyperlink so old snapshots keep loading.
func ParseEdgeKind(s string) EdgeKind {
	switch s {
	case "history":
		return EdgeHistory
	case "user_grouped":
		return EdgeUserGrouped
	}
	return EdgeHyperlink
}

type Node struct {
	ID     uuid.UUID
	URL    string
	Title  string
	Pinned bool
	// ZoneID is nil when the node belongs to no zone. At most one zone
	// per node; reassignment is last-write-wins.
	ZoneID *uuid.UUID
}

type Edge struct {
	Source uuid.UUID
	Target uuid.UUID
	Kind   EdgeKind
}

// Graph is the single write path for topology. It is not safe for
// concurrent use; callers serialize mutations at the tick boundary.
type Graph struct {
	nodes map[uuid.UUID]*Node
	edges []Edge
}

func New() *Graph {
	return &Graph{nodes: make(map[uuid.UUID]*Node)}
}

// AddNode creates a node with a fresh id and returns it.
func (g *Graph) AddNode(url, title string) *Node {
	n := &Node{ID: uuid.New(), URL: url, Title: title}
	g.nodes[n.ID] = n
	return n
}

// AddNodeWithID inserts a node under a caller-supplied id. Used by
// snapshot restore and replay, where ids must survive round-trips.
// Re-inserting an existing id overwrites the stored node.
func (g *Graph) AddNodeWithID(id uuid.UUID, url, title string) *Node {
	n := &Node{ID: id, URL: url, Title: title}
	g.nodes[id] = n
	return n
}

// RemoveNode deletes the node and every edge incident to it.
func (g *Graph) RemoveNode(id uuid.UUID) error {
	if _, ok := g.nodes[id]; !ok {
		return ErrNodeNotFound
	}
	delete(g.nodes, id)
	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

// AddEdge links two existing nodes. Edges referencing missing nodes are
// rejected rather than stored dangling.
func (g *Graph) AddEdge(source, target uuid.UUID, kind EdgeKind) error {
	if _, ok := g.nodes[source]; !ok {
		return ErrNodeNotFound
	}
	if _, ok := g.nodes[target]; !ok {
		return ErrNodeNotFound
	}
	for _, e := range g.edges {
		if e.Source == source && e.Target == target && e.Kind == kind {
			return ErrDuplicateEdge
		}
	}
	g.edges = append(g.edges, Edge{Source: source, Target: target, Kind: kind})
	return nil
}

func (g *Graph) RemoveEdge(source, target uuid.UUID) error {
	for i, e := range g.edges {
		if e.Source == source && e.Target == target {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return nil
		}
	}
	return ErrNodeNotFound
}

func (g *Graph) HasNode(id uuid.UUID) bool {
	_, ok := g.nodes[id]
	return ok
}

func (g *Graph) Node(id uuid.UUID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// SortedIDs returns node ids in a stable byte order. Force loops iterate
// this slice so two ticks with identical inputs visit nodes identically.
func (g *Graph) SortedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// Edges returns the edge list. Callers must not mutate it.
func (g *Graph) Edges() []Edge { return g.edges }

func (g *Graph) Degree(id uuid.UUID) int {
	d := 0
	for _, e := range g.edges {
		if e.Source == id || e.Target == id {
			d++
		}
	}
	return d
}

func (g *Graph) NodeCount() int { return len(g.nodes) }

func (g *Graph) EdgeCount() int { return len(g.edges) }

func (g *Graph) SetPinned(id uuid.UUID, pinned bool) error {
	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	n.Pinned = pinned
	return nil
}

// SetZone assigns zone membership. A nil zone clears membership; the
// node keeps its position either way.
func (g *Graph) SetZone(id uuid.UUID, zone *uuid.UUID) error {
	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	if zone == nil {
		n.ZoneID = nil
		return nil
	}
	z := *zone
	n.ZoneID = &z
	return nil
}

// ClearZoneRefs nulls membership for every node assigned to zone.
// Returns the ids that were cleared.
func (g *Graph) ClearZoneRefs(zone uuid.UUID) []uuid.UUID {
	var cleared []uuid.UUID
	for _, id := range g.SortedIDs() {
		n := g.nodes[id]
		if n.ZoneID != nil && *n.ZoneID == zone {
			n.ZoneID = nil
			cleared = append(cleared, id)
		}
	}
	return cleared
}

// MembersOf lists node ids assigned to zone, in stable order.
func (g *Graph) MembersOf(zone uuid.UUID) []uuid.UUID {
	var members []uuid.UUID
	for _, id := range g.SortedIDs() {
		n := g.nodes[id]
		if n.ZoneID != nil && *n.ZoneID == zone {
			members = append(members, id)
		}
	}
	return members
}
