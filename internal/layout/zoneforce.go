package layout

import (
	"github.com/helved/graphsim/internal/profile"
)

const (
	zoneForceScale = 0.05

	// maxZonePull caps the per-tick velocity adjustment so a strong or
	// distant zone nudges members instead of teleporting them.
	maxZonePull = 40.0
)

// ZoneForce attracts each zoned node toward its zone's centroid with
// magnitude proportional to strength times distance, capped. Runs last
// in the pipeline.
type ZoneForce struct{}

func (*ZoneForce) Name() string { return "zone_force" }

func (*ZoneForce) Enabled(p Policy) bool { return p.Zones }

func (*ZoneForce) Apply(ctx Context, prof profile.Profile, snap Snapshot, deltas Deltas) {
	if ctx.Zones == nil {
		return
	}
	for _, id := range ctx.Graph.SortedIDs() {
		n, ok := ctx.Graph.Node(id)
		if !ok || n.ZoneID == nil || n.Pinned {
			continue
		}
		pos, present := snap[id]
		if !present {
			continue
		}
		z, exists := ctx.Zones.Zone(*n.ZoneID)
		if !exists {
			// Dangling reference: tolerated and observable, never fatal.
			if ctx.OnDanglingZoneRef != nil {
				ctx.OnDanglingZoneRef(id, *n.ZoneID)
			}
			continue
		}
		dv := z.Centroid.Sub(pos).Scale(z.Strength * zoneForceScale).ClampLen(maxZonePull)
		deltas.Add(id, dv)
	}
}
