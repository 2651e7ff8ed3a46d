package engine

import (
	"github.com/google/uuid"

	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/graph"
	"github.com/helved/graphsim/internal/profile"
)

const (
	// MinSeparation clamps pairwise distance so coincident nodes do not
	// divide by zero or explode. Expected transient state, not an error.
	MinSeparation = 1.0

	// MaxForce and MaxSpeed bound per-node accumulation per tick.
	MaxForce = 1000.0
	MaxSpeed = 400.0
)

// StepResult reports what one tick did to one instance.
type StepResult struct {
	Stepped       bool
	Settled       bool
	KineticEnergy float64
}

// Stepper advances one instance per call. Pinned set comes from the
// topology store; pinned nodes are frozen entirely.
type Stepper struct {
	Dt float64
}

func NewStepper(dt float64) *Stepper {
	return &Stepper{Dt: dt}
}

// Step runs one fixed-timestep base physics pass over inst: pairwise
// repulsion, edge springs, preset gravity, damping and semi-implicit
// Euler integration, then the settle check. Paused instances are left
// untouched so their last computed state is preserved exactly.
func (s *Stepper) Step(inst *Instance, g *graph.Graph) StepResult {
	if !inst.Running {
		return StepResult{KineticEnergy: inst.KineticEnergy()}
	}

	ids := inst.SortedIDs()
	forces := make(map[uuid.UUID]geom.Vec2, len(ids))

	s.applyRepulsion(inst, ids, forces)
	s.applyAttraction(inst, g, forces)
	s.applyGravity(inst, ids, forces)
	s.integrate(inst, g, ids, forces)

	ke := inst.KineticEnergy()
	res := StepResult{Stepped: true, KineticEnergy: ke}
	if inst.Profile.AutoPause && len(ids) > 0 {
		if ke/float64(len(ids)) < inst.Profile.SettleThreshold {
			inst.Running = false
			res.Settled = true
		}
	}
	return res
}

func (s *Stepper) applyRepulsion(inst *Instance, ids []uuid.UUID, forces map[uuid.UUID]geom.Vec2) {
	p := inst.Profile
	scale := p.Repulsion * p.DensityTarget * p.DensityTarget
	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			delta := inst.Positions[a].Sub(inst.Positions[b])
			d := delta.Len()
			dir := delta.Normalized()
			if d < MinSeparation {
				d = MinSeparation
				if dir == (geom.Vec2{}) {
					// Coincident pair: deterministic separation axis.
					dir = geom.Vec2{X: 1}
				}
			}
			f := dir.Scale(scale / d)
			forces[a] = forces[a].Add(f)
			forces[b] = forces[b].Sub(f)
		}
	}
}

func (s *Stepper) applyAttraction(inst *Instance, g *graph.Graph, forces map[uuid.UUID]geom.Vec2) {
	p := inst.Profile
	for _, e := range g.Edges() {
		pa, okA := inst.Positions[e.Source]
		pb, okB := inst.Positions[e.Target]
		if !okA || !okB {
			continue
		}
		delta := pb.Sub(pa)
		d := delta.Len()
		if d < MinSeparation {
			continue
		}
		// Spring toward the profile's rest length.
		f := delta.Normalized().Scale(p.Attraction * (d - p.DensityTarget))
		forces[e.Source] = forces[e.Source].Add(f)
		forces[e.Target] = forces[e.Target].Sub(f)
	}
}

func (s *Stepper) applyGravity(inst *Instance, ids []uuid.UUID, forces map[uuid.UUID]geom.Vec2) {
	p := inst.Profile
	if p.Gravity == 0 {
		return
	}
	switch p.Preset {
	case profile.SolidTree:
		pull := p.GravityDir.Scale(p.Gravity * p.DensityTarget)
		for _, id := range ids {
			forces[id] = forces[id].Add(pull)
		}
	case profile.SolidCrystal:
		for _, id := range ids {
			target := snapToLattice(inst.Positions[id], p.LatticeSpacing)
			forces[id] = forces[id].Add(target.Sub(inst.Positions[id]).Scale(p.Gravity))
		}
	default:
		// Isotropic pull toward the origin, proportional to distance.
		for _, id := range ids {
			forces[id] = forces[id].Add(inst.Positions[id].Scale(-p.Gravity))
		}
	}
}

func (s *Stepper) integrate(inst *Instance, g *graph.Graph, ids []uuid.UUID, forces map[uuid.UUID]geom.Vec2) {
	p := inst.Profile
	for _, id := range ids {
		if n, ok := g.Node(id); ok && n.Pinned {
			inst.Velocities[id] = geom.Vec2{}
			continue
		}
		f := forces[id].ClampLen(MaxForce)
		v := inst.Velocities[id].Add(f.Scale(s.Dt)).Scale(p.Damping).ClampLen(MaxSpeed)
		pos := inst.Positions[id].Add(v.Scale(s.Dt))

		if p.Preset == profile.SolidTree && pos.Y > p.GroundY {
			pos.Y = p.GroundY
			if v.Y > 0 {
				v.Y = 0
			}
		}
		if !pos.IsValid() || !v.IsValid() {
			// Numeric degeneracy recovers locally: hold position, kill
			// velocity, keep stepping.
			pos = inst.Positions[id]
			v = geom.Vec2{}
		}
		inst.Velocities[id] = v
		inst.Positions[id] = pos
	}
}
