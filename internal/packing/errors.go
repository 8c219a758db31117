package packing

import "errors"

var (
	// ErrInvalidItemsType is returned when the item collection is not a mapping of item id to volume.
	ErrInvalidItemsType = errors.New("items must be a mapping of item id to volume")
	// ErrInvalidPartitionType is returned when the cart contents are not a list of lists.
	ErrInvalidPartitionType = errors.New("cart contents must be a list of lists")
	// ErrInvalidBinType is returned when the contents of a cart are not a list.
	ErrInvalidBinType = errors.New("contents of each cart must be in a sub-list")
	// ErrUnknownItemKey is returned when a cart references an item that is not part of the problem.
	ErrUnknownItemKey = errors.New("bad item key")
	// ErrDuplicateAssignment is returned when an item is loaded into more than one cart.
	ErrDuplicateAssignment = errors.New("at least one item is assigned multiple times")
	// ErrMissingAssignment is returned when an item is never loaded into any cart.
	ErrMissingAssignment = errors.New("some items not assigned to carts")
)
