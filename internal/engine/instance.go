// Package engine advances simulation instances: the canonical one bound
// to the topology store and the private ones owned by divergent views.
package engine

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/profile"
)

// Instance is one position/velocity table plus its active profile and
// running flag. Exactly one instance is canonical; divergent views own
// private instances cloned from it.
type Instance struct {
	Positions  map[uuid.UUID]geom.Vec2
	Velocities map[uuid.UUID]geom.Vec2
	Profile    profile.Profile
	Running    bool
}

func NewInstance(p profile.Profile) *Instance {
	return &Instance{
		Positions:  make(map[uuid.UUID]geom.Vec2),
		Velocities: make(map[uuid.UUID]geom.Vec2),
		Profile:    p,
		Running:    true,
	}
}

// Clone copies positions into a fresh instance with zeroed velocities.
// Divergent views start from the canonical layout at rest rather than
// inheriting canonical kinetic state.
func (in *Instance) Clone(p profile.Profile) *Instance {
	out := NewInstance(p)
	for id, pos := range in.Positions {
		out.Positions[id] = pos
		out.Velocities[id] = geom.Vec2{}
	}
	return out
}

// Seed places a node if it is not already present. The spawn position
// is derived from the id so replays land nodes identically.
func (in *Instance) Seed(id uuid.UUID) {
	if _, ok := in.Positions[id]; ok {
		return
	}
	pos := SpawnPosition(id)
	if in.Profile.Preset == profile.SolidCrystal && in.Profile.LatticeSpacing > 0 {
		pos = snapToLattice(pos, in.Profile.LatticeSpacing)
	}
	in.Positions[id] = pos
	in.Velocities[id] = geom.Vec2{}
}

func (in *Instance) Place(id uuid.UUID, pos geom.Vec2) {
	in.Positions[id] = pos
	if _, ok := in.Velocities[id]; !ok {
		in.Velocities[id] = geom.Vec2{}
	}
}

func (in *Instance) Remove(id uuid.UUID) {
	delete(in.Positions, id)
	delete(in.Velocities, id)
}

// SetProfile swaps the parameter set in place. Positions and velocities
// are preserved; a profile change is not a reset.
func (in *Instance) SetProfile(p profile.Profile) {
	in.Profile = p
}

func (in *Instance) Reheat() { in.Running = true }

func (in *Instance) Pause() { in.Running = false }

// SortedIDs returns the instance's node ids in stable byte order.
func (in *Instance) SortedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(in.Positions))
	for id := range in.Positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// KineticEnergy sums 0.5*|v|^2 over all nodes.
func (in *Instance) KineticEnergy() float64 {
	var ke float64
	for _, v := range in.Velocities {
		ke += 0.5 * v.LenSq()
	}
	return ke
}

// SpawnPosition maps a node id onto a deterministic ring placement.
func SpawnPosition(id uuid.UUID) geom.Vec2 {
	a := binary.BigEndian.Uint64(id[:8])
	b := binary.BigEndian.Uint64(id[8:])
	angle := 2 * math.Pi * float64(a%3600) / 3600
	radius := 40 + float64(b%200)
	return geom.Vec2{X: radius * math.Cos(angle), Y: radius * math.Sin(angle)}
}

func snapToLattice(p geom.Vec2, spacing float64) geom.Vec2 {
	return geom.Vec2{
		X: math.Round(p.X/spacing) * spacing,
		Y: math.Round(p.Y/spacing) * spacing,
	}
}
