// Package config loads parameter sets from YAML and applies them to a graph.
//
// A config file names graph parameters and their values:
//
//	parameters:
//	  flux_norm: [1.0]
//	  bin_edges: [0, 1, 2, 4, 8]
//
// Applying a config sets each named parameter, which invalidates the
// parameter's source output; nothing is recomputed until a downstream value
// is requested again.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lazygraph/lazygraph/graph"
)

// Config is a named set of parameter values.
type Config struct {
	// Parameters maps parameter names to their values.
	Parameters map[string][]float64 `yaml:"parameters"`
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML config data.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}
	for name, values := range cfg.Parameters {
		if len(values) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", name)
		}
	}
	return &cfg, nil
}

// Apply sets every named parameter on the graph. Unknown parameter names are
// an error; the parameters applied before the failure stay applied.
func (c *Config) Apply(g *graph.Graph) error {
	for name, values := range c.Parameters {
		p, ok := g.Parameter(name)
		if !ok {
			return fmt.Errorf("%w: parameter %s", graph.ErrNodeNotFound, name)
		}
		p.Set(values...)
	}
	return nil
}
