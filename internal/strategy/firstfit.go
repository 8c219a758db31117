package strategy

import (
	"context"
	"sort"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

// FirstFitDecreasingName is the registry name of the reference heuristic.
const FirstFitDecreasingName = "first-fit-decreasing"

// FirstFitDecreasing sorts items by volume, largest first, and puts each into the first
// cart with enough room left, opening a new cart when none has.
type FirstFitDecreasing struct {
	Username string
}

func (f FirstFitDecreasing) Name() string { return FirstFitDecreasingName }

func (f FirstFitDecreasing) Pack(ctx context.Context, items packing.Items, capacity float64) (Solution, error) {
	ids := make([]packing.ItemID, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if items[ids[i]] != items[ids[j]] {
			return items[ids[i]] > items[ids[j]]
		}
		return ids[i] < ids[j]
	})

	var (
		carts     packing.Partition
		remaining []float64
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return Solution{}, err
		}

		volume := items[id]
		placed := false
		for c := range carts {
			if remaining[c] >= volume {
				carts[c] = append(carts[c], id)
				remaining[c] -= volume
				placed = true
				break
			}
		}
		if !placed {
			carts = append(carts, packing.Bin{id})
			remaining = append(remaining, capacity-volume)
		}
	}

	username := f.Username
	if username == "" {
		username = FirstFitDecreasingName
	}
	return Solution{Username: username, Carts: packing.EncodePartition(carts)}, nil
}
