// Package tui renders a live terminal view of one workspace: the graph
// drawn on a braille canvas, a kinetic energy chart, and per-instance
// stats, with keys for pausing, reheating and cycling profiles.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/helved/graphsim/internal/geom"
	"github.com/helved/graphsim/internal/session"
)

const (
	canvasWidth     = 80
	canvasHeight    = 24
	historyCapacity = 600
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	pausedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Model drives one session at the render rate. All engine mutation
// happens in Update, between ticks.
type Model struct {
	sess          *session.Session
	canvas        *Canvas
	energyHistory []float64
	profileCycle  []string
	profileIdx    int
	ticks         int
}

func NewModel(sess *session.Session) Model {
	ids := sess.Catalog.IDs()
	idx := 0
	for i, id := range ids {
		if id == sess.Canonical().Profile.ID {
			idx = i
		}
	}
	return Model{
		sess:          sess,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		energyHistory: make([]float64, 0, historyCapacity),
		profileCycle:  ids,
		profileIdx:    idx,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.sess.Canonical().Running {
				m.sess.Canonical().Pause()
			} else {
				m.sess.ReheatGlobal()
			}
		case "r":
			m.sess.ReheatGlobal()
		case "n":
			m.sess.AddNode(fmt.Sprintf("https://example.com/%d", m.ticks), "", session.OriginUser)
		case "p":
			m.profileIdx = (m.profileIdx + 1) % len(m.profileCycle)
			// Catalog ids only, so lookup cannot fail here.
			_ = m.sess.SetCanonicalProfile(m.profileCycle[m.profileIdx])
		case "1":
			m.sess.Policy.DegreeRepulsion = !m.sess.Policy.DegreeRepulsion
		case "2":
			m.sess.Policy.DomainClustering = !m.sess.Policy.DomainClustering
		case "3":
			m.sess.Policy.Zones = !m.sess.Policy.Zones
		}
	case TickMsg:
		m.sess.Tick()
		m.ticks++
		m.energyHistory = append(m.energyHistory, m.sess.Canonical().KineticEnergy())
		if len(m.energyHistory) > historyCapacity {
			m.energyHistory = m.energyHistory[1:]
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m Model) View() string {
	m.draw()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render("GRAPHSIM") + "\n")
	if m.sess.Canonical().Running {
		s.WriteString("RUNNING\n\n")
	} else {
		s.WriteString(pausedStyle.Render("SETTLED") + "\n\n")
	}
	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Kinetic energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}
	s.WriteString(labelStyle.Render("Profile") + valueStyle.Render(m.sess.Canonical().Profile.ID) + "\n")
	s.WriteString(labelStyle.Render("Nodes") + valueStyle.Render(fmt.Sprintf("%d", m.sess.Graph.NodeCount())) + "\n")
	s.WriteString(labelStyle.Render("Edges") + valueStyle.Render(fmt.Sprintf("%d", m.sess.Graph.EdgeCount())) + "\n")
	s.WriteString(labelStyle.Render("Zones") + valueStyle.Render(fmt.Sprintf("%d", m.sess.Zones.Count())) + "\n")
	s.WriteString(labelStyle.Render("Ticks") + valueStyle.Render(fmt.Sprintf("%d", m.ticks)) + "\n")

	s.WriteString("\nEXTENSIONS\n")
	s.WriteString(fmt.Sprintf("  [1] degree repulsion   %s\n", onOff(m.sess.Policy.DegreeRepulsion)))
	s.WriteString(fmt.Sprintf("  [2] domain clustering  %s\n", onOff(m.sess.Policy.DomainClustering)))
	s.WriteString(fmt.Sprintf("  [3] zone force         %s\n", onOff(m.sess.Policy.Zones)))

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause/Reheat R:Reheat N:Node\nP:Profile 1/2/3:Extensions Q:Quit"))
	statsView := statsStyle.Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// draw projects world coordinates into the dot field, fitting the
// current layout's bounding box with a small margin.
func (m Model) draw() {
	m.canvas.Clear()
	positions := m.sess.Canonical().Positions
	if len(positions) == 0 {
		return
	}
	pw, ph := m.canvas.PixelSize()

	var min, max geom.Vec2
	first := true
	for _, p := range positions {
		if first {
			min, max = p, p
			first = false
			continue
		}
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	spanX, spanY := max.X-min.X, max.Y-min.Y
	if spanX < 1 {
		spanX = 1
	}
	if spanY < 1 {
		spanY = 1
	}
	project := func(p geom.Vec2) (int, int) {
		x := int((p.X - min.X) / spanX * float64(pw-8))
		y := int((p.Y - min.Y) / spanY * float64(ph-8))
		return x + 4, y + 4
	}

	for _, e := range m.sess.Graph.Edges() {
		pa, okA := positions[e.Source]
		pb, okB := positions[e.Target]
		if !okA || !okB {
			continue
		}
		ax, ay := project(pa)
		bx, by := project(pb)
		m.canvas.Line(ax, ay, bx, by)
	}
	for _, z := range m.sess.Zones.Zones() {
		lo, hi, ok := m.sess.Zones.MemberBounds(m.sess.Graph, positions, z.ID)
		if !ok {
			continue
		}
		x0, y0 := project(lo)
		x1, y1 := project(hi)
		m.canvas.Box(x0-2, y0-2, x1+2, y1+2)
	}
	for _, id := range m.sess.Graph.SortedIDs() {
		p, ok := positions[id]
		if !ok {
			continue
		}
		x, y := project(p)
		m.canvas.Mark(x, y, 1)
	}
}
