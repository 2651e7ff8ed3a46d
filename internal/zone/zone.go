// Package zone implements user-defined spatial groupings. Zones are
// workspace-scoped: one set is shared by every view opened against the
// same graph. Membership lives on the node (at most one zone per node,
// last write wins); zones themselves carry only centroid and strength.
package zone

import (
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/graph"
)

var (
	ErrZoneNotFound   = errors.New("graphsim: zone not found")
	ErrEmptySelection = errors.New("graphsim: empty selection")
)

// DefaultStrength is assigned to zones created from a selection.
const DefaultStrength = 1.0

type Zone struct {
	ID       uuid.UUID
	Name     string
	Centroid geom.Vec2
	Strength float64

	// seq orders zones by creation time for the overlap tie-break.
	seq uint64
}

// Set owns the workspace's zones. Mutations are atomic relative to a
// tick boundary; force computation never sees a half-applied change.
type Set struct {
	zones   map[uuid.UUID]*Zone
	nextSeq uint64
}

func NewSet() *Set {
	return &Set{zones: make(map[uuid.UUID]*Zone)}
}

// CreateFromSelection makes a zone whose centroid is the bounding-box
// center of the selected nodes' current positions and assigns every
// selected node to it, overwriting any prior membership.
func (s *Set) CreateFromSelection(g *graph.Graph, positions map[uuid.UUID]geom.Vec2, selection []uuid.UUID, name string) (*Zone, error) {
	if len(selection) == 0 {
		return nil, ErrEmptySelection
	}
	var (
		minX, minY = 0.0, 0.0
		maxX, maxY = 0.0, 0.0
		first      = true
	)
	for _, id := range selection {
		if !g.HasNode(id) {
			return nil, fmt.Errorf("%w: %s", graph.ErrNodeNotFound, id)
		}
		p := positions[id]
		if first {
			minX, maxX, minY, maxY = p.X, p.X, p.Y, p.Y
			first = false
			continue
		}
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}

	s.nextSeq++
	z := &Zone{
		ID:       uuid.New(),
		Name:     name,
		Centroid: geom.Vec2{X: (minX + maxX) / 2, Y: (minY + maxY) / 2},
		Strength: DefaultStrength,
		seq:      s.nextSeq,
	}
	s.zones[z.ID] = z
	for _, id := range selection {
		if err := g.SetZone(id, &z.ID); err != nil {
			return nil, err
		}
	}
	return z, nil
}

// Restore re-inserts a persisted zone. Load order becomes creation
// order, so tie-breaks survive a round-trip.
func (s *Set) Restore(id uuid.UUID, name string, centroid geom.Vec2, strength float64) *Zone {
	s.nextSeq++
	z := &Zone{ID: id, Name: name, Centroid: centroid, Strength: strength, seq: s.nextSeq}
	s.zones[id] = z
	return z
}

func (s *Set) Zone(id uuid.UUID) (*Zone, bool) {
	z, ok := s.zones[id]
	return z, ok
}

// Zones lists all zones in creation order.
func (s *Set) Zones() []*Zone {
	out := make([]*Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

func (s *Set) Count() int { return len(s.zones) }

// Drag moves the centroid handle. Members are not moved directly; they
// follow through the next tick's force application.
func (s *Set) Drag(id uuid.UUID, centroid geom.Vec2) error {
	z, ok := s.zones[id]
	if !ok {
		return ErrZoneNotFound
	}
	z.Centroid = centroid
	return nil
}

func (s *Set) SetStrength(id uuid.UUID, strength float64) error {
	z, ok := s.zones[id]
	if !ok {
		return ErrZoneNotFound
	}
	z.Strength = strength
	return nil
}

// Delete removes the zone record and clears membership on its former
// members. Members keep their last positions.
func (s *Set) Delete(id uuid.UUID, g *graph.Graph) error {
	if _, ok := s.zones[id]; !ok {
		return ErrZoneNotFound
	}
	g.ClearZoneRefs(id)
	delete(s.zones, id)
	return nil
}

// Merge moves every member of absorbed into survivor and deletes the
// absorbed record. Done in one pass so no node is briefly unassigned.
func (s *Set) Merge(survivor, absorbed uuid.UUID, g *graph.Graph) error {
	sv, ok := s.zones[survivor]
	if !ok {
		return ErrZoneNotFound
	}
	if _, ok := s.zones[absorbed]; !ok {
		return ErrZoneNotFound
	}
	if survivor == absorbed {
		return nil
	}
	for _, id := range g.MembersOf(absorbed) {
		if err := g.SetZone(id, &sv.ID); err != nil {
			return err
		}
	}
	delete(s.zones, absorbed)
	return nil
}

// ResolveOverlap picks which of several spatially overlapping zones a
// gesture targets: the most recently created wins. Callers with an
// unambiguous explicit target bypass this entirely.
func (s *Set) ResolveOverlap(candidates []uuid.UUID) (uuid.UUID, bool) {
	var (
		best    uuid.UUID
		bestSeq uint64
		found   bool
	)
	for _, id := range candidates {
		z, ok := s.zones[id]
		if !ok {
			continue
		}
		if !found || z.seq > bestSeq {
			best, bestSeq, found = id, z.seq, true
		}
	}
	return best, found
}

// MemberBounds returns the axis-aligned bounding box of a zone's member
// positions for backdrop rendering. ok is false for memberless zones.
func (s *Set) MemberBounds(g *graph.Graph, positions map[uuid.UUID]geom.Vec2, id uuid.UUID) (min, max geom.Vec2, ok bool) {
	members := g.MembersOf(id)
	if len(members) == 0 {
		return geom.Vec2{}, geom.Vec2{}, false
	}
	first := true
	for _, m := range members {
		p, present := positions[m]
		if !present {
			continue
		}
		if first {
			min, max = p, p
			first = false
			continue
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max, !first
}
