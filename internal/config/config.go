package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/helved/graphsim/internal/profile"
)

const (
	DefaultDt      = 1.0 / 60
	DefaultTicks   = 600
	DefaultNodes   = 40
	DefaultDomains = 4
)

type Config struct {
	Profile string  `yaml:"profile"`
	Dt      float64 `yaml:"dt"`
	Ticks   int     `yaml:"ticks"`

	DegreeRepulsionEnabled  bool `yaml:"degree_repulsion_enabled"`
	DomainClusteringEnabled bool `yaml:"domain_clustering_enabled"`
	ZonesEnabled            bool `yaml:"zones_enabled"`

	Seed SeedConfig `yaml:"seed"`
}

// SeedConfig sizes the demo graph the run command generates when no
// snapshot is given: Nodes pages spread over Domains registrable
// domains, linked hub-and-spoke per domain.
type SeedConfig struct {
	Nodes   int `yaml:"nodes"`
	Domains int `yaml:"domains"`
}

func DefaultConfig() *Config {
	return &Config{
		Profile:                 profile.IDLiquid,
		Dt:                      DefaultDt,
		Ticks:                   DefaultTicks,
		DegreeRepulsionEnabled:  true,
		DomainClusteringEnabled: false,
		ZonesEnabled:            true,
		Seed: SeedConfig{
			Nodes:   DefaultNodes,
			Domains: DefaultDomains,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", c.Dt)
	}
	if c.Ticks < 0 {
		return fmt.Errorf("ticks must be non-negative, got %d", c.Ticks)
	}
	if c.Seed.Nodes < 0 || c.Seed.Domains < 0 {
		return fmt.Errorf("seed counts must be non-negative")
	}
	return nil
}
