package supplier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

// problemSet is the YAML layout of a problems file:
//
//	problems:
//	  - id: 1
//	    capacity: 8
//	    items: {1: 3, 2: 4, 3: 5}
type problemSet struct {
	Problems []yamlProblem `yaml:"problems"`
}

type yamlProblem struct {
	ID       int64             `yaml:"id"`
	Capacity float64           `yaml:"capacity"`
	Items    map[int64]float64 `yaml:"items"`
}

// LoadFile reads a YAML problem set into a Memory supplier.
func LoadFile(path string) (*Memory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseProblems(data)
}

// ParseProblems decodes a YAML problem set into a Memory supplier.
func ParseProblems(data []byte) (*Memory, error) {
	var set problemSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	problems := make([]packing.Problem, 0, len(set.Problems))
	seen := make(map[int64]struct{}, len(set.Problems))
	for _, p := range set.Problems {
		if _, dup := seen[p.ID]; dup {
			return nil, fmt.Errorf("%w: problem %d defined twice", ErrInvalidProblem, p.ID)
		}
		seen[p.ID] = struct{}{}

		items := make(packing.Items, len(p.Items))
		for id, volume := range p.Items {
			items[packing.ItemID(id)] = volume
		}
		problems = append(problems, packing.Problem{
			ID:       packing.ProblemID(p.ID),
			Capacity: p.Capacity,
			Items:    items,
		})
	}
	return NewMemory(problems...)
}
