package layout

import (
	"testing"

	"github.com/helved/graphsim/internal/engine"
	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/graph"
	"github.com/helved/graphsim/internal/zone"
)

func TestDomainKey(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"bare domain", "https://example.com/page", "example.com"},
		{"subdomain collapses", "https://docs.example.com/x", "example.com"},
		{"deep subdomain", "https://a.b.example.co.uk/", "example.co.uk"},
		{"port stripped", "http://example.com:8080/", "example.com"},
		{"no host", "file:///tmp/x", ""},
		{"empty", "", ""},
		{"unparseable", "://bad", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DomainKey(tt.url); got != tt.want {
				t.Errorf("DomainKey(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestDomainClusteringPullsGroupTogether(t *testing.T) {
	g := graph.New()
	a := g.AddNode("https://blog.example.com/1", "")
	b := g.AddNode("https://shop.example.com/2", "")
	other := g.AddNode("https://unrelated.org/", "")

	inst := engine.NewInstance(gasProfile(t))
	inst.Place(a.ID, geom.Vec2{X: -100, Y: 0})
	inst.Place(b.ID, geom.Vec2{X: 100, Y: 0})
	inst.Place(other.ID, geom.Vec2{X: 0, Y: 300})

	p := NewPipeline()
	ctx := Context{Graph: g, Zones: zone.NewSet()}
	pol := Policy{DomainClustering: true}

	before := inst.Positions[a.ID].Sub(inst.Positions[b.ID]).Len()
	otherBefore := inst.Positions[other.ID]
	for i := 0; i < 10; i++ {
		p.Apply(inst, ctx, pol, testDt)
	}
	after := inst.Positions[a.ID].Sub(inst.Positions[b.ID]).Len()
	if after >= before {
		t.Errorf("same-domain pair distance %v -> %v, want decrease", before, after)
	}
	if inst.Positions[other.ID] != otherBefore {
		t.Error("singleton domain group was moved")
	}
}

func TestDegreeRepulsionSeparatesHubNeighborhood(t *testing.T) {
	g := graph.New()
	hub := g.AddNode("hub", "")
	leaf := g.AddNode("leaf", "")
	if err := g.AddEdge(hub.ID, leaf.ID, graph.EdgeHyperlink); err != nil {
		t.Fatal(err)
	}
	far := g.AddNode("far", "")

	inst := engine.NewInstance(gasProfile(t))
	inst.Place(hub.ID, geom.Vec2{X: 0, Y: 0})
	inst.Place(leaf.ID, geom.Vec2{X: 10, Y: 0})
	inst.Place(far.ID, geom.Vec2{X: 10000, Y: 0})

	p := NewPipeline()
	ctx := Context{Graph: g, Zones: zone.NewSet()}
	before := inst.Positions[leaf.ID].Sub(inst.Positions[hub.ID]).Len()
	farBefore := inst.Positions[far.ID]

	for i := 0; i < 5; i++ {
		p.Apply(inst, ctx, Policy{DegreeRepulsion: true}, testDt)
	}
	after := inst.Positions[leaf.ID].Sub(inst.Positions[hub.ID]).Len()
	if after <= before {
		t.Errorf("hub pair distance %v -> %v, want increase", before, after)
	}
	if inst.Positions[far.ID] != farBefore {
		t.Error("node outside the neighborhood radius was perturbed")
	}
}
