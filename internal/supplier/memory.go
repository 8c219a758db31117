package supplier

import (
	"context"
	"sort"
	"sync"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

// Memory keeps problems in-memory and guards access with a RWMutex.
type Memory struct {
	mu       sync.RWMutex
	problems map[packing.ProblemID]packing.Problem
}

// NewMemory initialises a Memory supplier holding copies of the given problems.
func NewMemory(problems ...packing.Problem) (*Memory, error) {
	m := &Memory{problems: make(map[packing.ProblemID]packing.Problem, len(problems))}
	for _, p := range problems {
		if err := m.Put(p); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Put validates and stores a copy of the problem, replacing any problem with the same id.
func (m *Memory) Put(p packing.Problem) error {
	if err := validateProblem(p); err != nil {
		return err
	}

	stored := cloneProblem(p)
	if stored.Items == nil {
		stored.Items = packing.Items{}
	}

	m.mu.Lock()
	m.problems[p.ID] = stored
	m.mu.Unlock()

	return nil
}

// ListProblemIDs returns the stored ids in ascending order.
func (m *Memory) ListProblemIDs(_ context.Context) ([]packing.ProblemID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]packing.ProblemID, 0, len(m.problems))
	for id := range m.problems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// GetProblem returns a defensive copy of the stored problem.
func (m *Memory) GetProblem(_ context.Context, id packing.ProblemID) (packing.Problem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.problems[id]
	if !ok {
		return packing.Problem{}, notFound(id)
	}
	return cloneProblem(p), nil
}

func (m *Memory) Close() error { return nil }

func cloneProblem(p packing.Problem) packing.Problem {
	return packing.Problem{
		ID:       p.ID,
		Capacity: p.Capacity,
		Items:    p.Items.Clone(),
	}
}
