package layout

import (
	"testing"

	"github.com/google/uuid"

	"github.com/helved/graphsim/internal/engine"
	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/graph"
	"github.com/helved/graphsim/internal/profile"
	"github.com/helved/graphsim/internal/zone"
)

const testDt = 0.016

func gasProfile(t *testing.T) profile.Profile {
	t.Helper()
	p, err := profile.NewCatalog().Lookup(profile.IDGas)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDisabledZonesMatchesNoZones(t *testing.T) {
	build := func(withZones bool) (*graph.Graph, *engine.Instance, *zone.Set, []uuid.UUID) {
		g := graph.New()
		inst := engine.NewInstance(gasProfile(t))
		var ids []uuid.UUID
		for i := 0; i < 5; i++ {
			n := g.AddNodeWithID(uuid.UUID{byte(i + 1)}, "https://example.com", "")
			inst.Place(n.ID, geom.Vec2{X: float64(i) * 30, Y: float64(i)})
			ids = append(ids, n.ID)
		}
		set := zone.NewSet()
		if withZones {
			if _, err := set.CreateFromSelection(g, inst.Positions, ids[:2], "z"); err != nil {
				t.Fatal(err)
			}
		}
		return g, inst, set, ids
	}

	gA, instA, setA, ids := build(true)
	gB, instB, setB, _ := build(false)

	pol := Policy{Zones: false}
	p := NewPipeline()
	p.Apply(instA, Context{Graph: gA, Zones: setA}, pol, testDt)
	p.Apply(instB, Context{Graph: gB, Zones: setB}, pol, testDt)

	for _, id := range ids {
		if instA.Positions[id] != instB.Positions[id] {
			t.Fatalf("zones_enabled=false differed from no-zones run at %v", id)
		}
	}
}

func TestZoneForceMonotonicApproach(t *testing.T) {
	g := graph.New()
	a := g.AddNode("a", "")
	b := g.AddNode("b", "")
	inst := engine.NewInstance(gasProfile(t))
	inst.Place(a.ID, geom.Vec2{X: 0, Y: 0})
	inst.Place(b.ID, geom.Vec2{X: 20, Y: 20})

	set := zone.NewSet()
	z, err := set.CreateFromSelection(g, inst.Positions, []uuid.UUID{a.ID, b.ID}, "pull")
	if err != nil {
		t.Fatal(err)
	}
	if z.Centroid != (geom.Vec2{X: 10, Y: 10}) {
		t.Fatalf("centroid = %v, want (10,10)", z.Centroid)
	}

	p := NewPipeline()
	ctx := Context{Graph: g, Zones: set}
	pol := Policy{Zones: true}

	distA := inst.Positions[a.ID].Sub(z.Centroid).Len()
	distB := inst.Positions[b.ID].Sub(z.Centroid).Len()
	for i := 0; i < 30; i++ {
		p.Apply(inst, ctx, pol, testDt)
		newA := inst.Positions[a.ID].Sub(z.Centroid).Len()
		newB := inst.Positions[b.ID].Sub(z.Centroid).Len()
		if newA >= distA || newB >= distB {
			t.Fatalf("tick %d: distance did not strictly decrease (%v->%v, %v->%v)",
				i, distA, newA, distB, newB)
		}
		distA, distB = newA, newB
	}
}

func TestZoneForceNeverTeleports(t *testing.T) {
	g := graph.New()
	a := g.AddNode("a", "")
	inst := engine.NewInstance(gasProfile(t))
	inst.Place(a.ID, geom.Vec2{X: 1e6, Y: 0})

	set := zone.NewSet()
	z, err := set.CreateFromSelection(g, inst.Positions, []uuid.UUID{a.ID}, "far")
	if err != nil {
		t.Fatal(err)
	}
	if err := set.Drag(z.ID, geom.Vec2{}); err != nil {
		t.Fatal(err)
	}
	if err := set.SetStrength(z.ID, 100); err != nil {
		t.Fatal(err)
	}

	before := inst.Positions[a.ID]
	NewPipeline().Apply(inst, Context{Graph: g, Zones: set}, Policy{Zones: true}, testDt)
	moved := inst.Positions[a.ID].Sub(before).Len()
	if moved > maxZonePull*testDt+1e-9 {
		t.Errorf("node jumped %v in one tick, cap is %v", moved, maxZonePull*testDt)
	}
}

func TestDanglingZoneRefObserved(t *testing.T) {
	g := graph.New()
	a := g.AddNode("a", "")
	ghost := uuid.New()
	if err := g.SetZone(a.ID, &ghost); err != nil {
		t.Fatal(err)
	}
	inst := engine.NewInstance(gasProfile(t))
	inst.Place(a.ID, geom.Vec2{X: 5, Y: 5})

	var observed int
	ctx := Context{
		Graph: g,
		Zones: zone.NewSet(),
		OnDanglingZoneRef: func(node, z uuid.UUID) {
			observed++
			if node != a.ID || z != ghost {
				t.Errorf("observed (%v,%v)", node, z)
			}
		},
	}
	before := inst.Positions[a.ID]
	NewPipeline().Apply(inst, ctx, Policy{Zones: true}, testDt)
	if observed != 1 {
		t.Errorf("dangling ref observed %d times, want 1", observed)
	}
	if inst.Positions[a.ID] != before {
		t.Error("dangling ref moved the node")
	}
}

func TestStageTogglingIsIndependent(t *testing.T) {
	build := func() (*graph.Graph, *engine.Instance) {
		g := graph.New()
		hub := g.AddNodeWithID(uuid.UUID{1}, "https://a.example.com", "")
		for i := 2; i <= 4; i++ {
			n := g.AddNodeWithID(uuid.UUID{byte(i)}, "https://b.example.com", "")
			if err := g.AddEdge(hub.ID, n.ID, graph.EdgeHyperlink); err != nil {
				t.Fatal(err)
			}
		}
		inst := engine.NewInstance(gasProfile(t))
		for i, id := range g.SortedIDs() {
			inst.Place(id, geom.Vec2{X: float64(i) * 10, Y: 0})
		}
		return g, inst
	}

	// Degree stage output with clustering off must equal its share of
	// the combined run: stages compute from the same snapshot.
	gA, instA := build()
	gB, instB := build()
	p := NewPipeline()
	p.Apply(instA, Context{Graph: gA, Zones: zone.NewSet()}, Policy{DegreeRepulsion: true}, testDt)
	p.Apply(instB, Context{Graph: gB, Zones: zone.NewSet()}, Policy{DegreeRepulsion: true, Zones: true}, testDt)

	for _, id := range gA.SortedIDs() {
		if instA.Positions[id] != instB.Positions[id] {
			t.Fatal("enabling an inert stage changed another stage's output")
		}
	}
}

func TestPinnedNodesIgnoreExtensions(t *testing.T) {
	g := graph.New()
	a := g.AddNode("https://example.com/a", "")
	b := g.AddNode("https://example.com/b", "")
	if err := g.SetPinned(a.ID, true); err != nil {
		t.Fatal(err)
	}
	inst := engine.NewInstance(gasProfile(t))
	inst.Place(a.ID, geom.Vec2{X: 0, Y: 0})
	inst.Place(b.ID, geom.Vec2{X: 500, Y: 0})

	set := zone.NewSet()
	if _, err := set.CreateFromSelection(g, inst.Positions, []uuid.UUID{a.ID, b.ID}, "z"); err != nil {
		t.Fatal(err)
	}
	NewPipeline().Apply(inst, Context{Graph: g, Zones: set}, Policy{Zones: true, DomainClustering: true}, testDt)

	if inst.Positions[a.ID] != (geom.Vec2{}) {
		t.Error("pinned node moved")
	}
	if inst.Positions[b.ID] == (geom.Vec2{X: 500, Y: 0}) {
		t.Error("free node did not move")
	}
}
