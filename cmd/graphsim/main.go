package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/helved/graphsim/internal/config"
	"github.com/helved/graphsim/internal/diag"
	"github.com/helved/graphsim/internal/graph"
	"github.com/helved/graphsim/internal/profile"
	"github.com/helved/graphsim/internal/session"
	"github.com/helved/graphsim/internal/snapshot"
	"github.com/helved/graphsim/internal/tui"
)

var (
	flagConfig  string
	flagPreset  string
	flagProfile string
	flagTicks   int
	flagDt      float64
	flagNodes   int
	flagDomains int
	flagIn      string
	flagOut     string
	flagStats   bool
)

var rootCmd = &cobra.Command{
	Use:   "graphsim",
	Short: "Multi-view force-directed graph layout engine",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a headless simulation and optionally export a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		metrics := diag.New(reg)

		var sess *session.Session
		if flagIn != "" {
			ws, err := snapshot.Load(flagIn)
			if err != nil {
				return err
			}
			sess, err = snapshot.Restore(ws, session.Config{Dt: cfg.Dt, Metrics: metrics})
			if err != nil {
				return err
			}
		} else {
			sess, err = session.New(session.Config{Dt: cfg.Dt, ProfileID: cfg.Profile, Metrics: metrics})
			if err != nil {
				return err
			}
			seedDemoGraph(sess, cfg.Seed.Nodes, cfg.Seed.Domains)
		}
		sess.Policy.DegreeRepulsion = cfg.DegreeRepulsionEnabled
		sess.Policy.DomainClustering = cfg.DomainClusteringEnabled
		sess.Policy.Zones = cfg.ZonesEnabled

		for i := 0; i < cfg.Ticks; i++ {
			sess.Tick()
		}

		fmt.Printf("ran %d ticks: %d nodes, %d edges, %d zones, kinetic energy %.4f\n",
			cfg.Ticks, sess.Graph.NodeCount(), sess.Graph.EdgeCount(),
			sess.Zones.Count(), sess.Canonical().KineticEnergy())
		if !sess.Canonical().Running {
			fmt.Println("simulation settled")
		}
		if flagStats {
			if err := printMetrics(reg); err != nil {
				return err
			}
		}
		if flagOut != "" {
			if err := snapshot.Save(flagOut, snapshot.Capture(sess)); err != nil {
				return err
			}
			fmt.Printf("snapshot written to %s\n", flagOut)
		}
		return nil
	},
}

var liveCmd = &cobra.Command{
	Use:   "live",
	Short: "Interactive live view of a simulated workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		var sess *session.Session
		if flagIn != "" {
			ws, err := snapshot.Load(flagIn)
			if err != nil {
				return err
			}
			sess, err = snapshot.Restore(ws, session.Config{Dt: cfg.Dt})
			if err != nil {
				return err
			}
		} else {
			sess, err = session.New(session.Config{Dt: cfg.Dt, ProfileID: cfg.Profile})
			if err != nil {
				return err
			}
			seedDemoGraph(sess, cfg.Seed.Nodes, cfg.Seed.Domains)
		}
		sess.Policy.DegreeRepulsion = cfg.DegreeRepulsionEnabled
		sess.Policy.DomainClustering = cfg.DomainClusteringEnabled
		sess.Policy.Zones = cfg.ZonesEnabled

		p := tea.NewProgram(tui.NewModel(sess), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the physics profile catalog",
	Run: func(cmd *cobra.Command, args []string) {
		catalog := profile.NewCatalog()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPRESET\tREPULSION\tATTRACTION\tGRAVITY\tDAMPING\tAUTO-PAUSE")
		for _, id := range catalog.IDs() {
			p, err := catalog.Lookup(id)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%v\n",
				p.ID, p.Preset, p.Repulsion, p.Attraction, p.Gravity, p.Damping, p.AutoPause)
		}
		w.Flush()
	},
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List run configuration presets",
	Run: func(cmd *cobra.Command, args []string) {
		names := config.ListPresets()
		sort.Strings(names)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPROFILE\tTICKS\tNODES\tCLUSTERING")
		for _, name := range names {
			c := config.GetPreset(name)
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%v\n",
				name, c.Profile, c.Ticks, c.Seed.Nodes, c.DomainClusteringEnabled)
		}
		w.Flush()
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <snapshot>",
	Short: "Summarize a workspace snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := snapshot.Load(args[0])
		if err != nil {
			return err
		}
		zoned := 0
		for _, n := range ws.Nodes {
			if n.ZoneID != nil {
				zoned++
			}
		}
		fmt.Printf("profile:  %s\n", ws.Profile)
		fmt.Printf("running:  %v\n", ws.Running)
		fmt.Printf("nodes:    %d (%d zoned)\n", len(ws.Nodes), zoned)
		fmt.Printf("edges:    %d\n", len(ws.Edges))
		fmt.Printf("zones:    %d\n", len(ws.Zones))
		for _, z := range ws.Zones {
			fmt.Printf("  %s  centroid=(%.1f, %.1f)  strength=%.2f\n", z.Name, z.X, z.Y, z.Strength)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <snapshot>",
	Short: "Export node positions from a snapshot as CSV",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ws, err := snapshot.Load(args[0])
		if err != nil {
			return err
		}
		out := os.Stdout
		if flagOut != "" {
			f, err := os.Create(flagOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		w := csv.NewWriter(out)
		defer w.Flush()
		if err := w.Write([]string{"id", "url", "x", "y", "zone_id"}); err != nil {
			return err
		}
		for _, n := range ws.Nodes {
			zone := ""
			if n.ZoneID != nil {
				zone = *n.ZoneID
			}
			rec := []string{
				n.ID, n.URL,
				strconv.FormatFloat(n.X, 'f', -1, 64),
				strconv.FormatFloat(n.Y, 'f', -1, 64),
				zone,
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	},
}

// resolveConfig layers preset, config file and explicit flags, the
// latter winning.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if flagPreset != "" {
		p := config.GetPreset(flagPreset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", flagPreset)
		}
		cfg = p
	}
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = flagProfile
	}
	if cmd.Flags().Changed("ticks") {
		cfg.Ticks = flagTicks
	}
	if cmd.Flags().Changed("dt") {
		cfg.Dt = flagDt
	}
	if cmd.Flags().Changed("nodes") {
		cfg.Seed.Nodes = flagNodes
	}
	if cmd.Flags().Changed("domains") {
		cfg.Seed.Domains = flagDomains
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// seedDemoGraph builds a hub-and-spoke browsing graph: one hub page
// per domain, spokes linked by hyperlink edges, hubs chained by
// history edges.
func seedDemoGraph(sess *session.Session, nodes, domains int) {
	if nodes <= 0 || domains <= 0 {
		return
	}
	hubs := make([]*graph.Node, 0, domains)
	for d := 0; d < domains; d++ {
		hub := sess.AddNode(fmt.Sprintf("https://site%d.example.com/", d), fmt.Sprintf("site%d", d), session.OriginUser)
		hubs = append(hubs, hub)
		if d > 0 {
			_ = sess.AddEdge(hubs[d-1].ID, hub.ID, graph.EdgeHistory, session.OriginUser)
		}
	}
	for i := domains; i < nodes; i++ {
		d := i % domains
		leaf := sess.AddNode(fmt.Sprintf("https://site%d.example.com/page/%d", d, i), "", session.OriginUser)
		_ = sess.AddEdge(hubs[d].ID, leaf.ID, graph.EdgeHyperlink, session.OriginUser)
	}
}

func printMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var v float64
			switch {
			case m.GetCounter() != nil:
				v = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				v = m.GetGauge().GetValue()
			}
			fmt.Fprintf(w, "%s\t%g\n", mf.GetName(), v)
		}
	}
	return w.Flush()
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, liveCmd} {
		cmd.Flags().StringVarP(&flagConfig, "config", "c", "", "config file (yaml)")
		cmd.Flags().StringVar(&flagPreset, "preset", "", "named run preset")
		cmd.Flags().StringVar(&flagProfile, "profile", profile.IDLiquid, "physics profile id")
		cmd.Flags().IntVar(&flagTicks, "ticks", config.DefaultTicks, "ticks to simulate")
		cmd.Flags().Float64Var(&flagDt, "dt", config.DefaultDt, "timestep seconds")
		cmd.Flags().IntVar(&flagNodes, "nodes", config.DefaultNodes, "demo graph node count")
		cmd.Flags().IntVar(&flagDomains, "domains", config.DefaultDomains, "demo graph domain count")
		cmd.Flags().StringVar(&flagIn, "in", "", "load workspace snapshot")
	}
	runCmd.Flags().StringVarP(&flagOut, "out", "o", "", "write snapshot after run")
	runCmd.Flags().BoolVar(&flagStats, "stats", false, "print engine metrics after run")
	exportCmd.Flags().StringVarP(&flagOut, "out", "o", "", "output file (default stdout)")

	rootCmd.AddCommand(runCmd, liveCmd, profilesCmd, presetsCmd, inspectCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
