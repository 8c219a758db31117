package strategy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/eugenenazirov/cartcheck/internal/packing"
)

// CommandName is the registry name of the external program strategy.
const CommandName = "command"

const defaultFunction = "loadCarts"

// Command runs an external program per problem. The program reads
// {"capacity": <number>, "items": {"<id>": <volume>, ...}} on stdin and writes a Solution
// as JSON on stdout.
type Command struct {
	args     []string
	source   string
	function string
}

type commandRequest struct {
	Capacity float64       `json:"capacity"`
	Items    packing.Items `json:"items"`
}

// NewCommand creates a Command strategy. source and function optionally point at the
// program's Go source and the function holding the algorithm, for diagnostics.
func NewCommand(args []string, source, function string) (*Command, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return nil, ErrMissingCommand
	}
	if function == "" {
		function = defaultFunction
	}
	return &Command{
		args:     append([]string(nil), args...),
		source:   source,
		function: function,
	}, nil
}

func (c *Command) Name() string { return CommandName }

func (c *Command) Pack(ctx context.Context, items packing.Items, capacity float64) (Solution, error) {
	payload, err := json.Marshal(commandRequest{Capacity: capacity, Items: items})
	if err != nil {
		return Solution{}, fmt.Errorf("encode request: %w", err)
	}

	cmd := exec.CommandContext(ctx, c.args[0], c.args[1:]...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return Solution{}, fmt.Errorf("run %s: %w: %s", filepath.Base(c.args[0]), err, msg)
		}
		return Solution{}, fmt.Errorf("run %s: %w", filepath.Base(c.args[0]), err)
	}

	var solution Solution
	if err := json.Unmarshal(stdout.Bytes(), &solution); err != nil {
		return Solution{}, fmt.Errorf("decode output of %s: %w", filepath.Base(c.args[0]), err)
	}
	return solution, nil
}

// Source reads the configured source file.
func (c *Command) Source() (Source, error) {
	if c.source == "" {
		return Source{}, ErrNoSource
	}
	code, err := os.ReadFile(c.source)
	if err != nil {
		return Source{}, fmt.Errorf("read strategy source: %w", err)
	}
	return Source{
		Filename: c.source,
		Code:     code,
		Function: c.function,
	}, nil
}
