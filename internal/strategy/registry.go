package strategy

import "fmt"

// Options carries the settings some strategies need.
type Options struct {
	Username string
	Command  []string
	Source   string
	Function string
}

// Names lists the registered strategy names.
func Names() []string {
	return []string{TemplateName, FirstFitDecreasingName, CommandName}
}

// New returns the strategy registered under name. An empty name selects the template.
func New(name string, opts Options) (Strategy, error) {
	switch name {
	case "", TemplateName:
		return Template{}, nil
	case FirstFitDecreasingName:
		return FirstFitDecreasing{Username: opts.Username}, nil
	case CommandName:
		return NewCommand(opts.Command, opts.Source, opts.Function)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}
