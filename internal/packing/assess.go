package packing

import (
	"encoding/json"
	"errors"
)

const shapeMessage = "Solution is not of the list data type.  Other errors may also exist."

// Verdict is the combined outcome of validating one raw solution against a problem.
type Verdict struct {
	Load     Load
	Coverage Coverage
	// ShapeErr is set when the solution is not a list at all; no other check ran.
	ShapeErr error
	// CapacityErr is set when the capacity check could not produce counts.
	CapacityErr error
}

// Assess decodes carts and runs both checks. A structural problem inside the partition only
// replaces the capacity counts; the coverage check always runs on whatever could be decoded.
func Assess(items Items, capacity float64, carts json.RawMessage) Verdict {
	partition, err := DecodePartition(carts)
	if errors.Is(err, ErrInvalidPartitionType) {
		return Verdict{ShapeErr: err}
	}

	var v Verdict
	if err != nil {
		v.CapacityErr = err
	} else {
		v.Load, v.CapacityErr = CheckCapacity(items, partition, capacity)
	}
	v.Coverage = CheckAllPoints(items, partition)

	return v
}

// OK reports whether the solution passed every check.
func (v Verdict) OK() bool {
	return v.ShapeErr == nil && v.CapacityErr == nil && v.Coverage.OK()
}

// Err joins every failed condition, or returns nil when OK.
func (v Verdict) Err() error {
	return errors.Join(v.ShapeErr, v.CapacityErr, v.Coverage.Err())
}

// Messages lists the human-readable failure messages in reporting order.
func (v Verdict) Messages() []string {
	if v.ShapeErr != nil {
		return []string{shapeMessage}
	}
	var out []string
	if v.CapacityErr != nil {
		out = append(out, v.CapacityErr.Error())
	}
	if v.Coverage.Message != "" {
		out = append(out, v.Coverage.Message)
	}
	return out
}
