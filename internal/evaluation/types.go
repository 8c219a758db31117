package evaluation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

// ErrStrategyPanic is wrapped around a panic raised by a strategy.
var ErrStrategyPanic = errors.New("strategy panicked")

// State is the position of a problem in its evaluation.
type State int

// A problem moves Fetched -> StrategyRun -> Validated -> Reported, or ends in ErrorReported
// as soon as anything fails.
const (
	StateFetched State = iota + 1
	StateStrategyRun
	StateValidated
	StateReported
	StateErrorReported
)

func (s State) String() string {
	switch s {
	case StateFetched:
		return "fetched"
	case StateStrategyRun:
		return "strategy_run"
	case StateValidated:
		return "validated"
	case StateReported:
		return "reported"
	case StateErrorReported:
		return "error_reported"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result is the evaluation outcome of one problem.
type Result struct {
	ProblemID packing.ProblemID `json:"problemId"`
	Username  string            `json:"username,omitempty"`
	Nickname  string            `json:"nickname,omitempty"`
	State     State             `json:"state"`
	OK        bool              `json:"ok"`
	Load      packing.Load      `json:"load"`
	Coverage  packing.Coverage  `json:"coverage"`
	Errors    []string          `json:"errors,omitempty"`
}

// Reported returns r as handed to a reporter: a validated result moves to StateReported.
func (r Result) Reported() Result {
	if r.State == StateValidated {
		r.State = StateReported
	}
	return r
}

// Line renders the result as one console report line: "id/within/over" on success,
// "Problem id: <messages>" otherwise.
func (r Result) Line() string {
	if r.OK {
		return fmt.Sprintf("%d/%d/%d", r.ProblemID, r.Load.WithinCapacity, r.Load.OverCapacity)
	}
	return fmt.Sprintf("Problem %d: %s", r.ProblemID, strings.Join(r.Errors, "  "))
}

// Summary aggregates one evaluation run.
type Summary struct {
	RunID     string `json:"runId"`
	Problems  int    `json:"problems"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

func (s *Summary) add(r Result) {
	s.Problems++
	if r.OK {
		s.Succeeded++
	} else {
		s.Failed++
	}
}
