package config

import "github.com/helved/graphsim/internal/profile"

var Presets = map[string]*Config{
	"settle": {
		Profile: profile.IDLiquid, Dt: DefaultDt, Ticks: 600,
		DegreeRepulsionEnabled: true, ZonesEnabled: true,
		Seed: SeedConfig{Nodes: 40, Domains: 4},
	},
	"burst": {
		Profile: profile.IDGas, Dt: DefaultDt, Ticks: 300,
		ZonesEnabled: true,
		Seed:         SeedConfig{Nodes: 80, Domains: 1},
	},
	"cluster": {
		Profile: profile.IDSolid, Dt: DefaultDt, Ticks: 900,
		DegreeRepulsionEnabled: true, DomainClusteringEnabled: true, ZonesEnabled: true,
		Seed: SeedConfig{Nodes: 60, Domains: 6},
	},
	"tree": {
		Profile: profile.IDSolidTree, Dt: DefaultDt, Ticks: 900,
		DegreeRepulsionEnabled: true, ZonesEnabled: true,
		Seed: SeedConfig{Nodes: 30, Domains: 1},
	},
	"crystal": {
		Profile: profile.IDSolidCrystal, Dt: DefaultDt, Ticks: 900,
		DegreeRepulsionEnabled: true, ZonesEnabled: true,
		Seed: SeedConfig{Nodes: 50, Domains: 2},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
