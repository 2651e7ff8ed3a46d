// Package snapshot serializes a workspace: node positions and zone
// membership, edges, the zone set, the canonical profile and running
// flag. Older snapshots without zone data load with every membership
// nulled and an empty zone set.
package snapshot

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/graph"
	"github.com/helved/graphsim/internal/session"
)

type NodeRecord struct {
	ID     string  `yaml:"id"`
	URL    string  `yaml:"url"`
	Title  string  `yaml:"title,omitempty"`
	Pinned bool    `yaml:"pinned,omitempty"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	ZoneID *string `yaml:"zone_id,omitempty"`
}

type EdgeRecord struct {
	Source string `yaml:"source"`
	Target string `yaml:"target"`
	Kind   string `yaml:"kind"`
}

type ZoneRecord struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name"`
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Strength float64 `yaml:"strength"`
}

type Workspace struct {
	Profile string       `yaml:"profile"`
	Running bool         `yaml:"running"`
	Nodes   []NodeRecord `yaml:"nodes"`
	Edges   []EdgeRecord `yaml:"edges,omitempty"`
	// Zones is ordered oldest first; load order restores creation
	// order for the overlap tie-break.
	Zones []ZoneRecord `yaml:"zones,omitempty"`
}

// Capture snapshots a session's canonical state. Divergent views are
// not persisted by default.
func Capture(s *session.Session) *Workspace {
	ws := &Workspace{
		Profile: s.Canonical().Profile.ID,
		Running: s.Canonical().Running,
	}
	for _, id := range s.Graph.SortedIDs() {
		n, _ := s.Graph.Node(id)
		pos := s.Canonical().Positions[id]
		rec := NodeRecord{
			ID: id.String(), URL: n.URL, Title: n.Title, Pinned: n.Pinned,
			X: pos.X, Y: pos.Y,
		}
		if n.ZoneID != nil {
			z := n.ZoneID.String()
			rec.ZoneID = &z
		}
		ws.Nodes = append(ws.Nodes, rec)
	}
	for _, e := range s.Graph.Edges() {
		ws.Edges = append(ws.Edges, EdgeRecord{
			Source: e.Source.String(), Target: e.Target.String(), Kind: e.Kind.String(),
		})
	}
	for _, z := range s.Zones.Zones() {
		ws.Zones = append(ws.Zones, ZoneRecord{
			ID: z.ID.String(), Name: z.Name,
			X: z.Centroid.X, Y: z.Centroid.Y, Strength: z.Strength,
		})
	}
	return ws
}

// Restore builds a session from a workspace. All mutations are
// replay-sourced, so the persisted running flag is honored exactly:
// loading a paused snapshot stays paused. Unknown profile ids resolve
// to the fallback profile rather than failing the load. Edges whose
// endpoints are missing are dropped.
func Restore(ws *Workspace, cfg session.Config) (*session.Session, error) {
	s, err := session.New(cfg)
	if err != nil {
		return nil, err
	}
	res := s.ResolveProfile(ws.Profile)
	if err := s.SetCanonicalProfile(res.ResolvedID); err != nil {
		return nil, err
	}

	for _, rec := range ws.Nodes {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("graphsim: bad node id %q: %w", rec.ID, err)
		}
		s.AddNodeWithID(id, rec.URL, rec.Title, session.OriginReplay)
		s.Canonical().Place(id, geom.Vec2{X: rec.X, Y: rec.Y})
		if rec.Pinned {
			if err := s.SetPinned(id, true); err != nil {
				return nil, err
			}
		}
	}
	for _, rec := range ws.Edges {
		src, err := uuid.Parse(rec.Source)
		if err != nil {
			continue
		}
		dst, err := uuid.Parse(rec.Target)
		if err != nil {
			continue
		}
		err = s.AddEdge(src, dst, graph.ParseEdgeKind(rec.Kind), session.OriginReplay)
		if err != nil {
			// Dangling or duplicate edges in old files are dropped.
			continue
		}
	}
	for _, rec := range ws.Zones {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			return nil, fmt.Errorf("graphsim: bad zone id %q: %w", rec.ID, err)
		}
		s.Zones.Restore(id, rec.Name, geom.Vec2{X: rec.X, Y: rec.Y}, rec.Strength)
	}
	// Membership after zones so assignments can be taken as-is. A
	// zone_id with no matching record is kept: force computation
	// ignores it lazily and diagnostics count it.
	for _, rec := range ws.Nodes {
		if rec.ZoneID == nil {
			continue
		}
		zid, err := uuid.Parse(*rec.ZoneID)
		if err != nil {
			continue
		}
		id, _ := uuid.Parse(rec.ID)
		if err := s.Graph.SetZone(id, &zid); err != nil {
			return nil, err
		}
	}

	s.Canonical().Running = ws.Running
	return s, nil
}

func Encode(ws *Workspace) ([]byte, error) {
	return yaml.Marshal(ws)
}

func Decode(data []byte) (*Workspace, error) {
	var ws Workspace
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("graphsim: decode snapshot: %w", err)
	}
	return &ws, nil
}

func Save(path string, ws *Workspace) error {
	data, err := Encode(ws)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func Load(path string) (*Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}
