package packing

// ProblemID identifies one problem instance in the data store.
type ProblemID int64

// ItemID identifies an item within a problem.
type ItemID int64

// Items maps every item of a problem to its volume.
type Items map[ItemID]float64

// Clone returns a copy that can be handed to code which must not mutate the original.
func (i Items) Clone() Items {
	if i == nil {
		return nil
	}
	out := make(Items, len(i))
	for id, volume := range i {
		out[id] = volume
	}
	return out
}

// Bin lists the items loaded into a single cart.
type Bin []ItemID

// Partition is a candidate solution: carts in order, each holding item ids.
type Partition []Bin

// Problem is a single bin-packing instance: identical carts of Capacity and the items to load.
type Problem struct {
	ID       ProblemID
	Capacity float64
	Items    Items
}

// Load counts carts by whether their summed volume fits the capacity.
type Load struct {
	WithinCapacity int `json:"withinCapacity"`
	OverCapacity   int `json:"overCapacity"`
}

// Coverage reports whether every item was assigned exactly once.
type Coverage struct {
	Duplicate bool   `json:"duplicate"`
	Missing   bool   `json:"missing"`
	Message   string `json:"message,omitempty"`
}
