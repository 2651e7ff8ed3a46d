package zone_test

import (
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/graph"
	"github.com/helved/graphsim/internal/zone"
)

var _ = Describe("Zone set", func() {
	var (
		g         *graph.Graph
		set       *zone.Set
		positions map[uuid.UUID]geom.Vec2
		a, b, c   *graph.Node
	)

	BeforeEach(func() {
		g = graph.New()
		set = zone.NewSet()
		a = g.AddNode("a", "")
		b = g.AddNode("b", "")
		c = g.AddNode("c", "")
		positions = map[uuid.UUID]geom.Vec2{
			a.ID: {X: 0, Y: 0},
			b.ID: {X: 20, Y: 20},
			c.ID: {X: 100, Y: 100},
		}
	})

	Describe("CreateFromSelection", func() {
		It("centers the zone on the selection's bounding box", func() {
			z, err := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID, b.ID}, "pair")
			Expect(err).NotTo(HaveOccurred())
			Expect(z.Centroid).To(Equal(geom.Vec2{X: 10, Y: 10}))
			Expect(z.Strength).To(Equal(zone.DefaultStrength))
		})

		It("assigns membership to every selected node", func() {
			z, err := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID, b.ID}, "pair")
			Expect(err).NotTo(HaveOccurred())
			Expect(g.MembersOf(z.ID)).To(ConsistOf(a.ID, b.ID))
		})

		It("overwrites prior membership, last write wins", func() {
			z1, err := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID, b.ID}, "first")
			Expect(err).NotTo(HaveOccurred())
			z2, err := set.CreateFromSelection(g, positions, []uuid.UUID{b.ID, c.ID}, "second")
			Expect(err).NotTo(HaveOccurred())

			Expect(g.MembersOf(z1.ID)).To(ConsistOf([]uuid.UUID{a.ID}))
			Expect(g.MembersOf(z2.ID)).To(ConsistOf(b.ID, c.ID))
		})

		It("rejects an empty selection", func() {
			_, err := set.CreateFromSelection(g, positions, nil, "empty")
			Expect(err).To(MatchError(zone.ErrEmptySelection))
		})
	})

	Describe("Drag", func() {
		It("moves only the centroid", func() {
			z, _ := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID}, "z")
			Expect(set.Drag(z.ID, geom.Vec2{X: 50, Y: 50})).To(Succeed())
			Expect(z.Centroid).To(Equal(geom.Vec2{X: 50, Y: 50}))
		})

		It("fails for an unknown zone", func() {
			Expect(set.Drag(uuid.New(), geom.Vec2{})).To(MatchError(zone.ErrZoneNotFound))
		})
	})

	Describe("Delete", func() {
		It("clears membership without moving anyone", func() {
			z, _ := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID, b.ID}, "z")
			before := positions[a.ID]

			Expect(set.Delete(z.ID, g)).To(Succeed())

			na, _ := g.Node(a.ID)
			nb, _ := g.Node(b.ID)
			Expect(na.ZoneID).To(BeNil())
			Expect(nb.ZoneID).To(BeNil())
			Expect(positions[a.ID]).To(Equal(before))
			Expect(set.Count()).To(BeZero())
		})
	})

	Describe("Merge", func() {
		It("moves absorbed members under the survivor and drops the record", func() {
			z1, _ := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID}, "keep")
			z2, _ := set.CreateFromSelection(g, positions, []uuid.UUID{b.ID, c.ID}, "absorb")

			Expect(set.Merge(z1.ID, z2.ID, g)).To(Succeed())
			Expect(g.MembersOf(z1.ID)).To(ConsistOf(a.ID, b.ID, c.ID))
			_, ok := set.Zone(z2.ID)
			Expect(ok).To(BeFalse())
		})

		It("leaves no node unassigned at any point", func() {
			z1, _ := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID}, "keep")
			z2, _ := set.CreateFromSelection(g, positions, []uuid.UUID{b.ID}, "absorb")
			Expect(set.Merge(z1.ID, z2.ID, g)).To(Succeed())

			nb, _ := g.Node(b.ID)
			Expect(nb.ZoneID).NotTo(BeNil())
			Expect(*nb.ZoneID).To(Equal(z1.ID))
		})
	})

	Describe("ResolveOverlap", func() {
		It("picks the most recently created among the candidates", func() {
			z1, _ := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID}, "old")
			z2, _ := set.CreateFromSelection(g, positions, []uuid.UUID{b.ID}, "new")

			winner, ok := set.ResolveOverlap([]uuid.UUID{z1.ID, z2.ID})
			Expect(ok).To(BeTrue())
			Expect(winner).To(Equal(z2.ID))
		})

		It("applies the same rule to three overlapping zones", func() {
			z1, _ := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID}, "1")
			z2, _ := set.CreateFromSelection(g, positions, []uuid.UUID{b.ID}, "2")
			z3, _ := set.CreateFromSelection(g, positions, []uuid.UUID{c.ID}, "3")

			winner, ok := set.ResolveOverlap([]uuid.UUID{z1.ID, z3.ID, z2.ID})
			Expect(ok).To(BeTrue())
			Expect(winner).To(Equal(z3.ID))
		})

		It("reports no winner for unknown candidates", func() {
			_, ok := set.ResolveOverlap([]uuid.UUID{uuid.New()})
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Restore", func() {
		It("preserves creation order across a round-trip", func() {
			older := uuid.New()
			newer := uuid.New()
			set.Restore(older, "older", geom.Vec2{}, 1)
			set.Restore(newer, "newer", geom.Vec2{}, 1)

			winner, ok := set.ResolveOverlap([]uuid.UUID{older, newer})
			Expect(ok).To(BeTrue())
			Expect(winner).To(Equal(newer))
		})
	})

	Describe("MemberBounds", func() {
		It("covers all member positions", func() {
			z, _ := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID, c.ID}, "z")
			min, max, ok := set.MemberBounds(g, positions, z.ID)
			Expect(ok).To(BeTrue())
			Expect(min).To(Equal(geom.Vec2{X: 0, Y: 0}))
			Expect(max).To(Equal(geom.Vec2{X: 100, Y: 100}))
		})

		It("reports no bounds for a memberless zone", func() {
			z, _ := set.CreateFromSelection(g, positions, []uuid.UUID{a.ID}, "z")
			Expect(g.SetZone(a.ID, nil)).To(Succeed())
			_, _, ok := set.MemberBounds(g, positions, z.ID)
			Expect(ok).To(BeFalse())
		})
	})
})
