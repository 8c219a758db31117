package strategy

import "errors"

var (
	// ErrUnknownStrategy is returned when no strategy is registered under the requested name.
	ErrUnknownStrategy = errors.New("unknown packing strategy")
	// ErrMissingCommand is returned when the command strategy is selected without a program to run.
	ErrMissingCommand = errors.New("command strategy requires a program to run")
	// ErrNoSource is returned by Source when the strategy has no source text to inspect.
	ErrNoSource = errors.New("strategy source is not available")
)
