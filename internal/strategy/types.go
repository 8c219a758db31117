package strategy

import (
	"context"
	"encoding/json"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

// Solution is what a strategy hands back for one problem.
type Solution struct {
	// Username identifies the submitter: a name, or a team number for team assignments.
	Username string `json:"username"`
	// Carts holds the partition as a JSON list of lists of item ids. It is kept raw so
	// that malformed answers can be reported instead of rejected at decode time.
	Carts json.RawMessage `json:"carts"`
	// Nickname is shown on the leaderboard instead of Username when set.
	Nickname string `json:"nickname,omitempty"`
}

// Strategy loads items into carts of identical capacity.
type Strategy interface {
	Name() string
	// Pack receives its own copy of the items and may modify it freely.
	Pack(ctx context.Context, items packing.Items, capacity float64) (Solution, error)
}

// Source is the text of a strategy implementation and the function that holds the algorithm.
type Source struct {
	Filename string
	Code     []byte
	Function string
}

// Inspectable is implemented by strategies that can expose their own source for diagnostics.
type Inspectable interface {
	Source() (Source, error)
}
