package packing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// DecodeItems parses a JSON object of item id to volume.
func DecodeItems(raw json.RawMessage) (Items, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidItemsType, describe(raw))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidItemsType, err)
	}

	items := make(Items, len(fields))
	for key, value := range fields {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: item id %q is not an integer", ErrInvalidItemsType, key)
		}
		var volume float64
		if err := json.Unmarshal(value, &volume); err != nil {
			return nil, fmt.Errorf("%w: volume of item %d is not a number", ErrInvalidItemsType, id)
		}
		items[ItemID(id)] = volume
	}
	return items, nil
}

// DecodePartition parses a JSON list of lists of item ids.
//
// When raw is not a list, ErrInvalidPartitionType is returned with a nil partition. Carts that
// are not lists (ErrInvalidBinType) and ids that are not whole numbers (ErrUnknownItemKey) are
// dropped: the first such error is returned alongside the remaining partition.
func DecodePartition(raw json.RawMessage) (Partition, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidPartitionType, describe(raw))
	}

	var carts []json.RawMessage
	if err := json.Unmarshal(raw, &carts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPartitionType, err)
	}

	var firstErr error
	partition := make(Partition, 0, len(carts))
	for i, cart := range carts {
		cart = bytes.TrimSpace(cart)
		if len(cart) == 0 || cart[0] != '[' {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: cart %d is %s", ErrInvalidBinType, i+1, describe(cart))
			}
			continue
		}

		var elements []json.RawMessage
		if err := json.Unmarshal(cart, &elements); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: cart %d: %v", ErrInvalidBinType, i+1, err)
			}
			continue
		}

		bin := make(Bin, 0, len(elements))
		for _, element := range elements {
			id, ok := decodeItemID(element)
			if !ok {
				if firstErr == nil {
					firstErr = fmt.Errorf("%w: %s in cart %d", ErrUnknownItemKey, bytes.TrimSpace(element), i+1)
				}
				continue
			}
			bin = append(bin, id)
		}
		partition = append(partition, bin)
	}

	return partition, firstErr
}

// decodeItemID accepts any JSON number with no fractional part, so 1.0 and 1e2 name items 1 and 100.
func decodeItemID(element json.RawMessage) (ItemID, bool) {
	var id int64
	if err := json.Unmarshal(element, &id); err == nil {
		return ItemID(id), true
	}
	var f float64
	if err := json.Unmarshal(element, &f); err != nil {
		return 0, false
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return ItemID(f), true
}

// EncodePartition renders a partition as a JSON list of lists. A nil partition or cart encodes as [].
func EncodePartition(partition Partition) json.RawMessage {
	carts := make([][]ItemID, len(partition))
	for i, bin := range partition {
		carts[i] = []ItemID(bin)
		if carts[i] == nil {
			carts[i] = []ItemID{}
		}
	}
	data, err := json.Marshal(carts)
	if err != nil {
		// []ItemID always marshals.
		panic(err)
	}
	return data
}

func describe(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "nothing"
	}
	switch raw[0] {
	case '{':
		return "an object"
	case '[':
		return "a list"
	case '"':
		return "a string"
	case 'n':
		return "null"
	case 't', 'f':
		return "a boolean"
	default:
		return "a number"
	}
}
