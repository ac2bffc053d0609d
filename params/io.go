package params

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Set is one complete parameter file: the plant parameters plus the root
// types it references.
type Set struct {
	Plant Plant      `yaml:"plant"`
	Roots []RootType `yaml:"roots"`
}

// Load reads a parameter set from a YAML file, starting from the embedded
// defaults. If path is empty only the defaults are used. A roots section in
// the file replaces the default root types wholesale.
func Load(path string) (*Set, error) {
	s := &Set{}
	if err := yaml.Unmarshal(defaultsYAML, s); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading parameter file: %w", err)
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parsing parameter file: %w", err)
		}
	}

	s.Plant.Normalize()
	for i := range s.Roots {
		s.Roots[i].Normalize()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks every root type and that type indices are unique.
func (s *Set) Validate() error {
	seen := map[int]bool{}
	for i := range s.Roots {
		t := &s.Roots[i]
		if err := t.Validate(); err != nil {
			return err
		}
		if seen[t.Type] {
			return fmt.Errorf("duplicate root type index %d", t.Type)
		}
		seen[t.Type] = true
	}
	return nil
}

// Write writes the parameter set to a YAML file.
func (s *Set) Write(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling parameters: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing parameter file: %w", err)
	}
	return nil
}
