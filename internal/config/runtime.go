package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig is the optional ember.yaml a project root may carry:
// source roots for require() resolution, a GC tuning override, and a
// stdlib module allowlist, decoded with the same gopkg.in/yaml.v3
// library the yaml_encode/yaml_decode host functions use.
// StdlibModules is decoded but not consulted: stdlib.Install registers
// every module regardless.
type RuntimeConfig struct {
	SourceRoots    []string `yaml:"source_roots"`
	InitialGCLimit int      `yaml:"initial_gc_limit"`
	GCGrowthFactor float64  `yaml:"gc_growth_factor"`
	StdlibModules  []string `yaml:"stdlib_modules"`
}

// Default mirrors the zero-config behavior: resolve requires relative
// to the working directory ("."), use the VM's built-in GC defaults,
// and list every stdlib module.
func Default() *RuntimeConfig {
	return &RuntimeConfig{
		SourceRoots:   []string{"."},
		StdlibModules: []string{"yaml", "uuid", "sqlite", "grpc"},
	}
}

// Load reads path if it exists, falling back to Default() if it
// doesn't — an ember.yaml is optional, never required to run a script.
func Load(path string) (*RuntimeConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if len(cfg.SourceRoots) == 0 {
		cfg.SourceRoots = []string{"."}
	}
	return cfg, nil
}
