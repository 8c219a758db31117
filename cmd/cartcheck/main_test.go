package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

const problemsYAML = `
problems:
  - id: 3
    capacity: 8
    items: {1: 3, 2: 4, 3: 5}
  - id: 1
    capacity: 8
    items: {1: 12, 2: 3}
`

func writeProblems(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "problems.yaml")
	if err := os.WriteFile(path, []byte(problemsYAML), 0o600); err != nil {
		t.Fatalf("write problems: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CARTCHECK_BACKEND", "PROBLEMS_FILE", "STRATEGY", "STRATEGY_COMMAND", "REPORT_FORMAT", "LOG_LEVEL", "REDIS_ADDR"} {
		t.Setenv(key, "")
	}
}

func TestRunEvaluateFromFile(t *testing.T) {
	clearEnv(t)
	path := writeProblems(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--backend=file", "--problems-file=" + path, "--strategy=first-fit-decreasing", "--log-level=error",
	}, &out)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	want := "Problem Number/Num. Carts within Capacity/Num. Carts Overcapacity\n1/1/1\n3/2/0\n"
	if out.String() != want {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestRunEvaluateTemplateReportsEveryProblem(t *testing.T) {
	clearEnv(t)
	path := writeProblems(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"evaluate", "--backend=file", "--problems-file=" + path, "--log-level=error", "--format=json",
	}, &out)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected two results and a summary, got:\n%s", out.String())
	}
	for _, line := range lines[:2] {
		if !strings.Contains(line, `"ok":false`) || !strings.Contains(line, "Some items not assigned to carts.") {
			t.Fatalf("expected missing items error, got %s", line)
		}
	}
}

func TestRunLoadThenEvaluateFromRedis(t *testing.T) {
	clearEnv(t)
	s := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", s.Addr())
	path := writeProblems(t)

	if err := run(context.Background(), []string{"load", path, "--log-level=error"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("load returned error: %v", err)
	}

	ids, err := s.List("problems")
	if err != nil {
		t.Fatalf("problems list missing: %v", err)
	}
	if strings.Join(ids, ",") != "1,3" {
		t.Fatalf("unexpected problem ids in redis: %v", ids)
	}

	var out bytes.Buffer
	err = run(context.Background(), []string{
		"--backend=redis", "--strategy=first-fit-decreasing", "--log-level=error",
	}, &out)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if !strings.Contains(out.String(), "1/1/1\n3/2/0\n") {
		t.Fatalf("unexpected report:\n%s", out.String())
	}
}

func TestRunFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--definitely-not-a-flag"}},
		{name: "invalid backend", args: []string{"--backend=postgres"}},
		{name: "invalid log level", args: []string{"--backend=file", "--problems-file=x.yaml", "--log-level=loud"}},
		{name: "missing problems file", args: []string{"--backend=file", "--problems-file=" + filepath.Join(os.TempDir(), "cartcheck-missing.yaml")}},
		{name: "load without file", args: []string{"load"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if err := run(context.Background(), tt.args, &bytes.Buffer{}); err == nil {
				t.Fatalf("expected error for %v", tt.args)
			}
		})
	}
}

func TestRunSupplierFailureAborts(t *testing.T) {
	clearEnv(t)
	s := miniredis.RunT(t)
	t.Setenv("REDIS_ADDR", s.Addr())
	s.RPush("problems", "1")
	s.Set("problem:1:capacity", "not-a-number")

	err := run(context.Background(), []string{"--backend=redis", "--log-level=error"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "evaluation aborted") {
		t.Fatalf("expected evaluation to abort, got %v", err)
	}
}
