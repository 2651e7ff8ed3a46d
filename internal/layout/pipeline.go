// Package layout implements the extension pipeline: ordered soft-bias
// force contributors applied after base physics integration. Each stage
// reads one shared snapshot of the just-integrated positions and writes
// velocity deltas; the pipeline sums and applies them in a single pass,
// so enabling or disabling one stage never changes another's output.
package layout

import (
	"github.com/google/uuid"

	"github.com/helved/graphsim/internal/engine"
	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/graph"
	"github.com/helved/graphsim/internal/profile"
	"github.com/helved/graphsim/internal/zone"
)

// Policy gates each stage independently. Disabled stages are skipped
// with zero cost.
type Policy struct {
	DegreeRepulsion  bool
	DomainClustering bool
	Zones            bool
}

// DefaultPolicyFor seeds a policy from a profile's preset defaults.
// Zones are on unless the caller turns them off.
func DefaultPolicyFor(p profile.Profile) Policy {
	return Policy{
		DegreeRepulsion:  p.DegreeRepulsion,
		DomainClustering: p.DomainClustering,
		Zones:            true,
	}
}

// Context carries the per-tick collaborators a stage may read.
type Context struct {
	Graph *graph.Graph
	Zones *zone.Set

	// OnDanglingZoneRef is invoked when a node references a zone that
	// no longer exists. The reference is ignored, not fatal.
	OnDanglingZoneRef func(node, zone uuid.UUID)
}

// Snapshot is the read-only position table every stage computes from.
type Snapshot map[uuid.UUID]geom.Vec2

// Deltas accumulates velocity adjustments keyed by node.
type Deltas map[uuid.UUID]geom.Vec2

func (d Deltas) Add(id uuid.UUID, dv geom.Vec2) {
	d[id] = d[id].Add(dv)
}

// Extension is one pipeline stage.
type Extension interface {
	Name() string
	Enabled(p Policy) bool
	Apply(ctx Context, prof profile.Profile, snap Snapshot, deltas Deltas)
}

// Pipeline holds the stages in their fixed order: degree repulsion,
// domain clustering, then zone force last.
type Pipeline struct {
	stages []Extension
}

func NewPipeline() *Pipeline {
	return &Pipeline{stages: []Extension{
		&DegreeRepulsion{},
		&DomainClustering{},
		&ZoneForce{},
	}}
}

// Stages exposes the ordered stage list for diagnostics.
func (p *Pipeline) Stages() []Extension { return p.stages }

// Apply runs the enabled stages against inst and folds the summed
// deltas into its velocities and positions. Pinned nodes are skipped.
func (p *Pipeline) Apply(inst *engine.Instance, ctx Context, pol Policy, dt float64) {
	snap := make(Snapshot, len(inst.Positions))
	for id, pos := range inst.Positions {
		snap[id] = pos
	}
	deltas := make(Deltas)
	for _, st := range p.stages {
		if !st.Enabled(pol) {
			continue
		}
		st.Apply(ctx, inst.Profile, snap, deltas)
	}
	if len(deltas) == 0 {
		return
	}
	for _, id := range inst.SortedIDs() {
		dv, ok := deltas[id]
		if !ok {
			continue
		}
		if n, present := ctx.Graph.Node(id); present && n.Pinned {
			continue
		}
		v := inst.Velocities[id].Add(dv).ClampLen(engine.MaxSpeed)
		inst.Velocities[id] = v
		inst.Positions[id] = inst.Positions[id].Add(dv.Scale(dt))
	}
}
