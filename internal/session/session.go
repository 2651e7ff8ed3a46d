// Package session owns one workspace's engine state: the topology
// store, the canonical simulation instance, the shared zone set, the
// open views, and the extension pipeline. One Tick call advances
// everything once; all mutation happens between ticks.
package session

import (
	"github.com/google/uuid"

	"github.com/helved/graphsim/internal/diag"
	"github.com/helved/graphsim/internal/engine"
	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/graph"
	"github.com/helved/graphsim/internal/layout"
	"github.com/helved/graphsim/internal/profile"
	"github.com/helved/graphsim/internal/view"
	"github.com/helved/graphsim/internal/zone"
)

// Origin tags where a structural mutation came from. Replay-sourced
// mutations never touch the running flag, so loading a paused snapshot
// stays paused.
type Origin int

const (
	OriginUser Origin = iota
	OriginReplay
)

const DefaultDt = 1.0 / 60

type Config struct {
	Dt        float64
	ProfileID string
	Metrics   *diag.Metrics
}

type Session struct {
	Graph   *graph.Graph
	Zones   *zone.Set
	Views   *view.Manager
	Catalog *profile.Catalog
	Policy  layout.Policy

	canonical *engine.Instance
	stepper   *engine.Stepper
	pipeline  *layout.Pipeline
	metrics   *diag.Metrics
}

func New(cfg Config) (*Session, error) {
	if cfg.Dt <= 0 {
		cfg.Dt = DefaultDt
	}
	if cfg.ProfileID == "" {
		cfg.ProfileID = profile.IDLiquid
	}
	if cfg.Metrics == nil {
		cfg.Metrics = diag.NewNop()
	}
	catalog := profile.NewCatalog()
	prof, err := catalog.Lookup(cfg.ProfileID)
	if err != nil {
		return nil, err
	}
	return &Session{
		Graph:     graph.New(),
		Zones:     zone.NewSet(),
		Views:     view.NewManager(),
		Catalog:   catalog,
		Policy:    layout.DefaultPolicyFor(prof),
		canonical: engine.NewInstance(prof),
		stepper:   engine.NewStepper(cfg.Dt),
		pipeline:  layout.NewPipeline(),
		metrics:   cfg.Metrics,
	}, nil
}

// Canonical exposes the shared instance. External callers treat it as
// read-only; mutation goes through session methods.
func (s *Session) Canonical() *engine.Instance { return s.canonical }

func (s *Session) Dt() float64 { return s.stepper.Dt }

// --- structural mutations (the intent-reducer boundary) ---

func (s *Session) AddNode(url, title string, origin Origin) *graph.Node {
	n := s.Graph.AddNode(url, title)
	s.seedEverywhere(n.ID)
	s.noteStructuralChange(origin)
	return n
}

// AddNodeWithID restores a node under a known id, for replay and
// snapshot load paths.
func (s *Session) AddNodeWithID(id uuid.UUID, url, title string, origin Origin) *graph.Node {
	n := s.Graph.AddNodeWithID(id, url, title)
	s.seedEverywhere(n.ID)
	s.noteStructuralChange(origin)
	return n
}

func (s *Session) RemoveNode(id uuid.UUID, origin Origin) error {
	if err := s.Graph.RemoveNode(id); err != nil {
		return err
	}
	s.canonical.Remove(id)
	for _, inst := range s.Views.DivergentInstances() {
		inst.Remove(id)
	}
	s.noteStructuralChange(origin)
	return nil
}

func (s *Session) AddEdge(source, target uuid.UUID, kind graph.EdgeKind, origin Origin) error {
	if err := s.Graph.AddEdge(source, target, kind); err != nil {
		return err
	}
	s.noteStructuralChange(origin)
	return nil
}

func (s *Session) RemoveEdge(source, target uuid.UUID, origin Origin) error {
	if err := s.Graph.RemoveEdge(source, target); err != nil {
		return err
	}
	s.noteStructuralChange(origin)
	return nil
}

func (s *Session) SetPinned(id uuid.UUID, pinned bool) error {
	return s.Graph.SetPinned(id, pinned)
}

func (s *Session) seedEverywhere(id uuid.UUID) {
	s.canonical.Seed(id)
	for _, inst := range s.Views.DivergentInstances() {
		inst.Seed(id)
	}
}

// noteStructuralChange is the side-effect descriptor from the reducer:
// a structural change occurred, and whether it came from replay.
// Existing velocities are never altered here.
func (s *Session) noteStructuralChange(origin Origin) {
	if origin == OriginReplay {
		return
	}
	if !s.canonical.Running {
		s.metrics.ReheatsTotal.Inc()
	}
	s.canonical.Reheat()
	for _, inst := range s.Views.DivergentInstances() {
		inst.Reheat()
	}
}

// --- profiles ---

// SetCanonicalProfile swaps the canonical parameter set. Unknown ids
// leave the previous profile in effect.
func (s *Session) SetCanonicalProfile(id string) error {
	prof, err := s.Catalog.Lookup(id)
	if err != nil {
		return err
	}
	s.canonical.SetProfile(prof)
	s.canonical.Reheat()
	return nil
}

// ResolveProfile is the lenient path: unknown ids fall back and the
// substitution is counted.
func (s *Session) ResolveProfile(id string) profile.Resolution {
	r := s.Catalog.Resolve(id)
	if r.FallbackUsed {
		s.metrics.FallbackResolutions.Inc()
	}
	return r
}

// --- view topology ---

// EnterDivergent switches a view to divergent mode under profileID.
// The private instance clones canonical positions at rest.
func (s *Session) EnterDivergent(viewID uuid.UUID, profileID string) error {
	prof, err := s.Catalog.Lookup(profileID)
	if err != nil {
		return err
	}
	return s.Views.EnterDivergent(viewID, s.canonical, prof)
}

// ExitDivergent returns a view to canonical mode, committing or
// discarding its private layout.
func (s *Session) ExitDivergent(viewID uuid.UUID, policy view.ExitPolicy) error {
	return s.Views.ExitDivergent(viewID, policy, s.canonical)
}

// SetViewProfile reassigns a divergent view's profile in place and
// reheats its private instance.
func (s *Session) SetViewProfile(viewID uuid.UUID, profileID string) error {
	prof, err := s.Catalog.Lookup(profileID)
	if err != nil {
		return err
	}
	if err := s.Views.SetProfile(viewID, prof); err != nil {
		return err
	}
	v, err := s.Views.View(viewID)
	if err != nil {
		return err
	}
	if v.Mode == view.Divergent {
		v.Local.Reheat()
	}
	return nil
}

// ReheatGlobal resumes the canonical instance without resetting any
// velocity state.
func (s *Session) ReheatGlobal() {
	if !s.canonical.Running {
		s.metrics.ReheatsTotal.Inc()
	}
	s.canonical.Reheat()
}

// ReheatView resumes one view's effective instance.
func (s *Session) ReheatView(viewID uuid.UUID) error {
	v, err := s.Views.View(viewID)
	if err != nil {
		return err
	}
	if v.Mode == view.Divergent {
		v.Local.Reheat()
		return nil
	}
	s.ReheatGlobal()
	return nil
}

// PositionsForView returns the position table a view renders from:
// canonical for canonical mode, the private table for divergent mode.
// Callers must not mutate it.
func (s *Session) PositionsForView(viewID uuid.UUID) (map[uuid.UUID]geom.Vec2, error) {
	v, err := s.Views.View(viewID)
	if err != nil {
		return nil, err
	}
	if v.Mode == view.Divergent {
		return v.Local.Positions, nil
	}
	return s.canonical.Positions, nil
}

// --- zones ---

func (s *Session) CreateZoneFromSelection(selection []uuid.UUID, name string) (*zone.Zone, error) {
	return s.Zones.CreateFromSelection(s.Graph, s.canonical.Positions, selection, name)
}

func (s *Session) DragZone(id uuid.UUID, centroid geom.Vec2) error {
	return s.Zones.Drag(id, centroid)
}

func (s *Session) DeleteZone(id uuid.UUID) error {
	return s.Zones.Delete(id, s.Graph)
}

func (s *Session) MergeZones(survivor, absorbed uuid.UUID) error {
	return s.Zones.Merge(survivor, absorbed, s.Graph)
}

// AssignZone sets or clears a node's membership explicitly.
func (s *Session) AssignZone(node uuid.UUID, zoneID *uuid.UUID) error {
	if zoneID != nil {
		if _, ok := s.Zones.Zone(*zoneID); !ok {
			return zone.ErrZoneNotFound
		}
	}
	return s.Graph.SetZone(node, zoneID)
}

// ResolveZoneTarget applies the overlap tie-break: the most recently
// created candidate wins.
func (s *Session) ResolveZoneTarget(candidates []uuid.UUID) (uuid.UUID, bool) {
	return s.Zones.ResolveOverlap(candidates)
}

// --- the tick ---

// Tick advances the canonical instance and every divergent instance by
// one step, then layers the extension pipeline on each instance that
// actually stepped. Paused instances are skipped entirely.
func (s *Session) Tick() {
	ctx := layout.Context{
		Graph: s.Graph,
		Zones: s.Zones,
		OnDanglingZoneRef: func(node, z uuid.UUID) {
			s.metrics.DanglingZoneRefs.Inc()
		},
	}

	res := s.stepper.Step(s.canonical, s.Graph)
	if res.Stepped {
		s.pipeline.Apply(s.canonical, ctx, s.Policy, s.stepper.Dt)
	}
	settled := 0
	if !s.canonical.Running {
		settled++
	}
	for _, inst := range s.Views.DivergentInstances() {
		r := s.stepper.Step(inst, s.Graph)
		if r.Stepped {
			s.pipeline.Apply(inst, ctx, s.Policy, s.stepper.Dt)
		}
		if !inst.Running {
			settled++
		}
	}

	s.metrics.TicksTotal.Inc()
	s.metrics.KineticEnergy.Set(s.canonical.KineticEnergy())
	s.metrics.SettledInstances.Set(float64(settled))
}
