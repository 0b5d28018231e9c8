package dashboard

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/netrics-lab/netrics-dashboard/internal/core/datafile"
	"gopkg.in/yaml.v3"
)

//go:embed default_stats.yaml
var defaultStats []byte

// Definition is one named statistic of the stats endpoint.
type Definition struct {
	Name string
	Spec datafile.OpSpec
}

// rawDefinition is the on-disk YAML shape.
type rawDefinition struct {
	Name     string   `yaml:"name"`
	Operator string   `yaml:"operator"` // last, multi, stddev
	Keys     []string `yaml:"keys"`
	Age      string   `yaml:"age"` // multi and stddev only, e.g. "1w", "36h"
	Decorate []string `yaml:"decorate"`
	Reverse  bool     `yaml:"reverse"`
}

type rawDefinitions struct {
	Stats []rawDefinition `yaml:"stats"`
}

// LoadDefinitions reads stat definitions from path, or the built-in set when
// path is empty. Every definition is validated by building its aggregator.
func LoadDefinitions(path string) ([]Definition, error) {
	data := defaultStats
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("reading stat definitions %s: %w", path, err)
		}
	}
	return ParseDefinitions(data)
}

// ParseDefinitions parses and validates a YAML stat definition document.
func ParseDefinitions(data []byte) ([]Definition, error) {
	var raw rawDefinitions
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing stat definitions: %w", err)
	}

	seen := make(map[string]bool, len(raw.Stats))
	defs := make([]Definition, 0, len(raw.Stats))
	for i, r := range raw.Stats {
		if r.Name == "" {
			return nil, fmt.Errorf("stat #%d: name must not be empty", i+1)
		}
		if seen[r.Name] {
			return nil, fmt.Errorf("stat %q: duplicate name", r.Name)
		}
		seen[r.Name] = true

		if !datafile.ValidOperator(r.Operator) {
			return nil, fmt.Errorf("stat %q: unsupported operator %q", r.Name, r.Operator)
		}

		spec := datafile.OpSpec{
			Operator: r.Operator,
			Keys:     r.Keys,
			Decorate: r.Decorate,
			Reverse:  r.Reverse,
		}
		if r.Age != "" {
			age, err := datafile.ParseAge(r.Age)
			if err != nil {
				return nil, fmt.Errorf("stat %q: %w", r.Name, err)
			}
			spec.Age = age
		}
		if _, err := datafile.Build(spec); err != nil {
			return nil, fmt.Errorf("stat %q: %w", r.Name, err)
		}

		defs = append(defs, Definition{Name: r.Name, Spec: spec})
	}
	return defs, nil
}

// operations builds the aggregators of defs. Aggregators keep no state
// between scans, so the result can be reused for every request.
func operations(defs []Definition) (map[string]datafile.Aggregator, error) {
	ops := make(map[string]datafile.Aggregator, len(defs))
	for _, def := range defs {
		agg, err := datafile.Build(def.Spec)
		if err != nil {
			return nil, fmt.Errorf("stat %q: %w", def.Name, err)
		}
		ops[def.Name] = agg
	}
	return ops, nil
}
