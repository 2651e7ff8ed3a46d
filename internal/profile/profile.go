// Package profile defines the named physics parameter presets and the
// catalog they are looked up from. Profiles are immutable value objects;
// swapping a profile never resets positions or velocities.
package profile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/helved/graphsim/internal/geom"
)

var ErrUnknownProfile = errors.New("graphsim: unknown physics profile")

// Preset is a closed set. Force dispatch switches on it exhaustively.
type Preset int

const (
	Gas Preset = iota
	Liquid
	SolidStandard
	SolidTree
	SolidCrystal
)

func (p Preset) String() string {
	switch p {
	case Gas:
		return "gas"
	case Liquid:
		return "liquid"
	case SolidStandard:
		return "solid.standard"
	case SolidTree:
		return "solid.tree"
	case SolidCrystal:
		return "solid.crystal"
	}
	return "unknown"
}

// Profile bundles the force coefficients for one preset. DensityTarget
// is the ideal inter-node distance: repulsion scales with it squared and
// edge springs treat it as rest length.
type Profile struct {
	ID         string
	Preset     Preset
	Repulsion  float64
	Attraction float64
	Gravity    float64
	Damping    float64

	DensityTarget float64

	// GravityDir and GroundY apply to SolidTree only.
	GravityDir geom.Vec2
	GroundY    float64

	// LatticeSpacing applies to SolidCrystal only.
	LatticeSpacing float64

	// SettleThreshold is the kinetic energy per node below which an
	// auto-pausing instance may idle.
	SettleThreshold float64

	// Default extension policy carried by the preset. The session-level
	// policy flags gate these further.
	DegreeRepulsion  bool
	DomainClustering bool
	AutoPause        bool
}

const (
	IDGas          = "physics:gas"
	IDLiquid       = "physics:liquid"
	IDSolid        = "physics:solid"
	IDSolidTree    = "physics:solid-tree"
	IDSolidCrystal = "physics:solid-crystal"

	// IDLegacyDefault is the alias older workspaces stored before the
	// catalog grew named presets.
	IDLegacyDefault = "physics:default"

	// FallbackID is substituted by Resolve when a requested id is
	// absent. Strict Lookup never falls back.
	FallbackID = IDLiquid
)

func gas() Profile {
	return Profile{
		ID: IDGas, Preset: Gas,
		Repulsion: 0.8, Attraction: 0.05, Gravity: 0.0, Damping: 0.8,
		DensityTarget:   120,
		SettleThreshold: 0.002,
		AutoPause:       false,
	}
}

func liquid() Profile {
	return Profile{
		ID: IDLiquid, Preset: Liquid,
		Repulsion: 0.28, Attraction: 0.22, Gravity: 0.18, Damping: 0.55,
		DensityTarget:   80,
		SettleThreshold: 0.002,
		DegreeRepulsion: true,
		AutoPause:       true,
	}
}

func solid(id string, preset Preset) Profile {
	return Profile{
		ID: id, Preset: preset,
		Repulsion: 0.12, Attraction: 0.42, Gravity: 0.24, Damping: 0.4,
		DensityTarget:    60,
		SettleThreshold:  0.001,
		DegreeRepulsion:  true,
		DomainClustering: true,
		AutoPause:        true,
	}
}

func solidTree() Profile {
	p := solid(IDSolidTree, SolidTree)
	p.GravityDir = geom.Vec2{X: 0, Y: 1}
	p.GroundY = 600
	return p
}

func solidCrystal() Profile {
	p := solid(IDSolidCrystal, SolidCrystal)
	p.LatticeSpacing = 90
	return p
}

// Resolution records how a profile id was satisfied, so callers can
// surface fallback substitution instead of silently masking it.
type Resolution struct {
	RequestedID  string
	ResolvedID   string
	Matched      bool
	FallbackUsed bool
	Profile      Profile
}

// Catalog holds the registered profiles. Read-only after construction.
type Catalog struct {
	byID    map[string]Profile
	aliases map[string]string
}

func NewCatalog() *Catalog {
	c := &Catalog{
		byID:    make(map[string]Profile),
		aliases: map[string]string{IDLegacyDefault: IDLiquid},
	}
	for _, p := range []Profile{gas(), liquid(), solid(IDSolid, SolidStandard), solidTree(), solidCrystal()} {
		c.byID[p.ID] = p
	}
	return c
}

// Lookup is strict: an absent id is an error and the caller's current
// profile stays in effect.
func (c *Catalog) Lookup(id string) (Profile, error) {
	if canonical, ok := c.aliases[id]; ok {
		id = canonical
	}
	p, ok := c.byID[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownProfile, id)
	}
	return p, nil
}

// Resolve satisfies any request, substituting the fallback profile for
// unknown ids and reporting that it did so.
func (c *Catalog) Resolve(id string) Resolution {
	requested := id
	if canonical, ok := c.aliases[id]; ok {
		id = canonical
	}
	if p, ok := c.byID[id]; ok {
		return Resolution{
			RequestedID: requested,
			ResolvedID:  p.ID,
			Matched:     true,
			Profile:     p,
		}
	}
	fb := c.byID[FallbackID]
	return Resolution{
		RequestedID:  requested,
		ResolvedID:   FallbackID,
		FallbackUsed: true,
		Profile:      fb,
	}
}

// IDs lists the registered profile ids in sorted order.
func (c *Catalog) IDs() []string {
	ids := make([]string, 0, len(c.byID))
	for id := range c.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
