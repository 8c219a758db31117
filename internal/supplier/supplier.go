// Package supplier provides problem instances to the evaluation: the list of problem ids
// and, per id, the cart capacity and the item volumes.
package supplier

import (
	"context"
	"errors"
	"fmt"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

var (
	// ErrProblemNotFound is returned when the data store holds no problem with the requested id.
	ErrProblemNotFound = errors.New("problem not found")
	// ErrInvalidProblem indicates stored problem data violates validation rules.
	ErrInvalidProblem = errors.New("invalid problem data")
	// ErrUnknownBackend is returned when no supplier exists for the configured backend.
	ErrUnknownBackend = errors.New("unknown problem backend")
)

// Supplier provides access to the problems of an assignment.
type Supplier interface {
	ListProblemIDs(ctx context.Context) ([]packing.ProblemID, error)
	GetProblem(ctx context.Context, id packing.ProblemID) (packing.Problem, error)
	Close() error
}

func validateProblem(p packing.Problem) error {
	if p.Capacity < 0 {
		return fmt.Errorf("%w: problem %d has negative capacity %g", ErrInvalidProblem, p.ID, p.Capacity)
	}
	for id, volume := range p.Items {
		if volume < 0 {
			return fmt.Errorf("%w: item %d of problem %d has negative volume %g", ErrInvalidProblem, id, p.ID, volume)
		}
	}
	return nil
}

func notFound(id packing.ProblemID) error {
	return fmt.Errorf("%w: id %d", ErrProblemNotFound, id)
}
