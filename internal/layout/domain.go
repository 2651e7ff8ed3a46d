package layout

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/profile"
)

const domainClusterStrength = 0.04

// DomainClustering pulls each node toward the centroid of the nodes
// sharing its registrable domain. Nodes without a parseable host, and
// groups of one, contribute nothing.
type DomainClustering struct{}

func (*DomainClustering) Name() string { return "domain_clustering" }

func (*DomainClustering) Enabled(p Policy) bool { return p.DomainClustering }

func (*DomainClustering) Apply(ctx Context, prof profile.Profile, snap Snapshot, deltas Deltas) {
	groups := make(map[string][]uuid.UUID)
	for _, id := range ctx.Graph.SortedIDs() {
		n, ok := ctx.Graph.Node(id)
		if !ok || n.Pinned {
			continue
		}
		if _, present := snap[id]; !present {
			continue
		}
		key := DomainKey(n.URL)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], id)
	}
	for _, members := range groups {
		if len(members) < 2 {
			continue
		}
		var centroid geom.Vec2
		for _, id := range members {
			centroid = centroid.Add(snap[id])
		}
		centroid = centroid.Scale(1 / float64(len(members)))
		for _, id := range members {
			deltas.Add(id, centroid.Sub(snap[id]).Scale(domainClusterStrength))
		}
	}
}

// DomainKey derives the grouping key for a URL: the registrable domain
// (eTLD+1) of its host, falling back to the bare host when the public
// suffix list cannot classify it.
func DomainKey(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return ""
	}
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld
	}
	return host
}
