package supplier

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

func sampleProblem(id packing.ProblemID) packing.Problem {
	return packing.Problem{ID: id, Capacity: 8, Items: packing.Items{1: 3, 2: 4, 3: 5}}
}

func TestMemoryReturnsDefensiveCopies(t *testing.T) {
	t.Parallel()

	store, err := NewMemory(sampleProblem(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.GetProblem(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Capacity != 8 || len(got.Items) != 3 {
		t.Fatalf("unexpected problem %+v", got)
	}

	// ensure mutation safety
	got.Items[1] = 999
	delete(got.Items, 2)
	again, err := store.GetProblem(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.Items[1] != 3 || len(again.Items) != 3 {
		t.Fatalf("expected defensive copy, got %v", again.Items)
	}
}

func TestMemoryListsIDsInOrder(t *testing.T) {
	t.Parallel()

	store, err := NewMemory(sampleProblem(30), sampleProblem(4), sampleProblem(12))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ids, err := store.ListProblemIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []packing.ProblemID{4, 12, 30}; !slices.Equal(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
}

func TestMemoryUnknownProblem(t *testing.T) {
	t.Parallel()

	store, err := NewMemory()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.GetProblem(context.Background(), 7); !errors.Is(err, ErrProblemNotFound) {
		t.Fatalf("expected ErrProblemNotFound, got %v", err)
	}
}

func TestMemoryRejectsInvalidProblems(t *testing.T) {
	t.Parallel()

	testCases := []packing.Problem{
		{ID: 1, Capacity: -1, Items: packing.Items{1: 1}},
		{ID: 2, Capacity: 5, Items: packing.Items{1: 1, 2: -0.5}},
	}

	for idx, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {
			if _, err := NewMemory(tc); !errors.Is(err, ErrInvalidProblem) {
				t.Fatalf("expected ErrInvalidProblem for %+v, got %v", tc, err)
			}
		})
	}
}

func TestMemoryNilItemsBecomeEmpty(t *testing.T) {
	t.Parallel()

	store, err := NewMemory(packing.Problem{ID: 1, Capacity: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := store.GetProblem(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Items == nil {
		t.Fatalf("expected empty, non-nil items")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	store, err := NewMemory()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			if err := store.Put(sampleProblem(packing.ProblemID(offset))); err != nil {
				t.Errorf("Put failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.ListProblemIDs(context.Background()); err != nil {
				t.Errorf("ListProblemIDs failed: %v", err)
			}
		}()
	}

	wg.Wait()

	ids, err := store.ListProblemIDs(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 32 {
		t.Fatalf("expected 32 problems, got %d", len(ids))
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "problems.yaml")
	data := []byte(`problems:
  - id: 2
    capacity: 8
    items: {1: 3, 2: 4, 3: 5}
  - id: 1
    capacity: 10.5
    items:
      10: 2.5
      11: 8
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	store, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile returned error: %v", err)
	}

	ids, _ := store.ListProblemIDs(context.Background())
	if want := []packing.ProblemID{1, 2}; !slices.Equal(ids, want) {
		t.Fatalf("expected %v, got %v", want, ids)
	}
	p, err := store.GetProblem(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Capacity != 10.5 || p.Items[10] != 2.5 || p.Items[11] != 8 {
		t.Fatalf("unexpected problem %+v", p)
	}
}

func TestParseProblemsRejectsDuplicates(t *testing.T) {
	t.Parallel()

	data := []byte("problems:\n  - id: 1\n    capacity: 1\n  - id: 1\n    capacity: 2\n")
	if _, err := ParseProblems(data); !errors.Is(err, ErrInvalidProblem) {
		t.Fatalf("expected ErrInvalidProblem, got %v", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
