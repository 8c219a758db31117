package packing

import (
	"errors"
	"fmt"
	"strings"
)

const (
	duplicateMessage = "At least one item is assigned multiple times."
	missingMessage   = "Some items not assigned to carts."
)

// CheckCapacity sums the volume of every cart and counts how many carts fit within capacity.
// A cart whose load equals the capacity fits. Unknown item ids contribute no volume, but any
// unknown id anywhere in the partition fails the whole call with ErrUnknownItemKey.
func CheckCapacity(items Items, partition Partition, capacity float64) (Load, error) {
	if items == nil {
		return Load{}, ErrInvalidItemsType
	}

	var (
		load         Load
		unknown      int
		firstUnknown ItemID
		firstCart    int
	)
	for cart, bin := range partition {
		volume := 0.0
		for _, id := range bin {
			v, ok := items[id]
			if !ok {
				if unknown == 0 {
					firstUnknown, firstCart = id, cart+1
				}
				unknown++
				continue
			}
			volume += v
		}
		if volume <= capacity {
			load.WithinCapacity++
		} else {
			load.OverCapacity++
		}
	}

	if unknown > 0 {
		return Load{}, fmt.Errorf("%w: %d unknown item id(s), first %d in cart %d", ErrUnknownItemKey, unknown, firstUnknown, firstCart)
	}
	return load, nil
}

// CheckAllPoints verifies that every item is loaded into exactly one cart. Item ids are
// counted whether or not they belong to items; key validity is CheckCapacity's concern.
func CheckAllPoints(items Items, partition Partition) Coverage {
	assigned := make(map[ItemID]int)
	highest := 0
	for _, bin := range partition {
		for _, id := range bin {
			assigned[id]++
			if assigned[id] > highest {
				highest = assigned[id]
			}
		}
	}

	var (
		coverage Coverage
		messages []string
	)
	if highest > 1 {
		coverage.Duplicate = true
		messages = append(messages, duplicateMessage)
	}
	for id := range items {
		if _, ok := assigned[id]; !ok {
			coverage.Missing = true
			messages = append(messages, missingMessage)
			break
		}
	}
	coverage.Message = strings.Join(messages, "  ")

	return coverage
}

// Err converts the coverage flags into ErrDuplicateAssignment and/or ErrMissingAssignment.
func (c Coverage) Err() error {
	var errs []error
	if c.Duplicate {
		errs = append(errs, ErrDuplicateAssignment)
	}
	if c.Missing {
		errs = append(errs, ErrMissingAssignment)
	}
	return errors.Join(errs...)
}

// OK reports whether neither coverage condition fired.
func (c Coverage) OK() bool {
	return !c.Duplicate && !c.Missing
}
