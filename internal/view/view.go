// Package view tracks per-viewport topology state. A view starts in
// canonical mode, reading the shared instance; entering divergent mode
// gives it a private instance cloned from canonical, owned exclusively
// by that view until it exits or closes.
package view

import (
	"bytes"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/helved/graphsim/internal/engine"
	"github.com/helved/graphsim/internal/profile"
)

var ErrViewNotFound = errors.New("graphsim: view not found")

type TopologyMode int

const (
	Canonical TopologyMode = iota
	Divergent
)

func (m TopologyMode) String() string {
	if m == Divergent {
		return "divergent"
	}
	return "canonical"
}

// ExitPolicy selects what happens to a private instance on the
// divergent-to-canonical transition.
type ExitPolicy int

const (
	// Discard drops the private instance; the view reverts to the
	// canonical layout.
	Discard ExitPolicy = iota
	// Commit copies private positions into the canonical instance
	// before dropping it. Velocities are never merged, so divergent
	// kinetic state stays out of the shared simulation.
	Commit
)

type View struct {
	ID   uuid.UUID
	Name string
	Mode TopologyMode

	// Local is the privately owned instance. Non-nil exactly when Mode
	// is Divergent.
	Local *engine.Instance
}

// Manager owns the view table.
type Manager struct {
	views map[uuid.UUID]*View
}

func NewManager() *Manager {
	return &Manager{views: make(map[uuid.UUID]*View)}
}

// Open registers a new view in canonical mode.
func (m *Manager) Open(name string) *View {
	v := &View{ID: uuid.New(), Name: name, Mode: Canonical}
	m.views[v.ID] = v
	return v
}

func (m *Manager) View(id uuid.UUID) (*View, error) {
	v, ok := m.views[id]
	if !ok {
		return nil, ErrViewNotFound
	}
	return v, nil
}

// Views lists open views in stable id order.
func (m *Manager) Views() []*View {
	out := make([]*View, 0, len(m.views))
	for _, v := range m.views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out
}

// EnterDivergent clones the canonical positions into a fresh private
// instance carrying prof. The canonical instance is untouched. Calling
// it on an already divergent view only reassigns the profile in place.
func (m *Manager) EnterDivergent(id uuid.UUID, canonical *engine.Instance, prof profile.Profile) error {
	v, ok := m.views[id]
	if !ok {
		return ErrViewNotFound
	}
	if v.Mode == Divergent {
		v.Local.SetProfile(prof)
		return nil
	}
	v.Local = canonical.Clone(prof)
	v.Mode = Divergent
	return nil
}

// ExitDivergent returns the view to canonical mode under the given
// policy. Exiting a canonical view is a no-op.
func (m *Manager) ExitDivergent(id uuid.UUID, policy ExitPolicy, canonical *engine.Instance) error {
	v, ok := m.views[id]
	if !ok {
		return ErrViewNotFound
	}
	if v.Mode != Divergent {
		return nil
	}
	if policy == Commit {
		for nid, pos := range v.Local.Positions {
			if _, present := canonical.Positions[nid]; present {
				canonical.Positions[nid] = pos
			}
		}
	}
	v.Local = nil
	v.Mode = Canonical
	return nil
}

// SetProfile reassigns the active profile on a divergent view's private
// instance. Positions are retained; only future force computation
// changes. Canonical-mode views have no private instance to retarget.
func (m *Manager) SetProfile(id uuid.UUID, prof profile.Profile) error {
	v, ok := m.views[id]
	if !ok {
		return ErrViewNotFound
	}
	if v.Mode == Divergent {
		v.Local.SetProfile(prof)
	}
	return nil
}

// Close removes the view. A divergent view's private instance is
// discarded without committing.
func (m *Manager) Close(id uuid.UUID) error {
	if _, ok := m.views[id]; !ok {
		return ErrViewNotFound
	}
	delete(m.views, id)
	return nil
}

// DivergentInstances returns every private instance in stable view
// order, for per-tick stepping.
func (m *Manager) DivergentInstances() []*engine.Instance {
	var out []*engine.Instance
	for _, v := range m.Views() {
		if v.Mode == Divergent {
			out = append(out, v.Local)
		}
	}
	return out
}
