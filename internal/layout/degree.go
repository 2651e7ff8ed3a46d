package layout

import (
	"math"

	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/profile"
)

const (
	// degreeNeighborFactor bounds the stage to nearby pairs: only nodes
	// within this multiple of the profile's ideal distance feel the
	// bonus. Hubs de-clutter locally without perturbing the far field.
	degreeNeighborFactor = 2.0

	degreeStrength = 0.6
)

// DegreeRepulsion adds extra separation around high-degree nodes. The
// bonus grows logarithmically with edge degree.
type DegreeRepulsion struct{}

func (*DegreeRepulsion) Name() string { return "degree_repulsion" }

func (*DegreeRepulsion) Enabled(p Policy) bool { return p.DegreeRepulsion }

func (*DegreeRepulsion) Apply(ctx Context, prof profile.Profile, snap Snapshot, deltas Deltas) {
	ids := ctx.Graph.SortedIDs()
	radius := degreeNeighborFactor * prof.DensityTarget
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			pa, okA := snap[a]
			pb, okB := snap[b]
			if !okA || !okB {
				continue
			}
			delta := pa.Sub(pb)
			d := delta.Len()
			if d >= radius {
				continue
			}
			if d < 1 {
				d = 1
			}
			bonus := math.Log1p(float64(ctx.Graph.Degree(a))) + math.Log1p(float64(ctx.Graph.Degree(b)))
			if bonus == 0 {
				continue
			}
			dir := delta.Normalized()
			if dir == (geom.Vec2{}) {
				dir = geom.Vec2{X: 1}
			}
			dv := dir.Scale(degreeStrength * bonus / d)
			deltas.Add(a, dv)
			deltas.Add(b, dv.Scale(-1))
		}
	}
}
