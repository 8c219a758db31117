package evaluation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cartcheck/internal/diagnostics"
	"github.com/eugenenazirov/cartcheck/internal/metrics"
	"github.com/eugenenazirov/cartcheck/internal/packing"
	"github.com/eugenenazirov/cartcheck/internal/strategy"
	"github.com/eugenenazirov/cartcheck/internal/supplier"
)

// Evaluator runs a strategy against every problem of a supplier, one problem at a time.
type Evaluator struct {
	supplier supplier.Supplier
	strategy strategy.Strategy
	logger   *zap.Logger
	recorder *metrics.Recorder
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithRecorder counts every evaluated problem.
func WithRecorder(r *metrics.Recorder) Option {
	return func(e *Evaluator) {
		e.recorder = r
	}
}

// New constructs an Evaluator with the provided dependencies.
func New(sup supplier.Supplier, strat strategy.Strategy, logger *zap.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		supplier: sup,
		strategy: strat,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run evaluates every problem in supplier order and reports exactly one result per problem.
// A failing strategy only fails its problem; a failing supplier aborts the run.
func (e *Evaluator) Run(ctx context.Context, rep Reporter) (Summary, error) {
	summary := Summary{RunID: xid.New().String()}
	logger := e.logger.With(zap.String("run_id", summary.RunID), zap.String("strategy", e.strategy.Name()))

	ids, err := e.supplier.ListProblemIDs(ctx)
	if err != nil {
		return summary, fmt.Errorf("list problems: %w", err)
	}
	logger.Info("evaluation started", zap.Int("problems", len(ids)))

	if err := rep.Begin(); err != nil {
		return summary, fmt.Errorf("report header: %w", err)
	}

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result, err := e.Evaluate(ctx, id)
		if err != nil {
			logger.Error("evaluation aborted", zap.Int64("problem_id", int64(id)), zap.Error(err))
			return summary, err
		}
		result = result.Reported()
		logger.Debug("problem reported", zap.Int64("problem_id", int64(id)), zap.Stringer("state", result.State))
		if err := rep.Report(result); err != nil {
			return summary, fmt.Errorf("report problem %d: %w", id, err)
		}
		summary.add(result)
	}

	msg, err := e.Diagnose()
	if err != nil {
		logger.Warn("strategy diagnostics unavailable", zap.Error(err))
	} else if msg != "" {
		if err := rep.Diagnostics(msg); err != nil {
			return summary, fmt.Errorf("report diagnostics: %w", err)
		}
	}

	if err := rep.End(summary); err != nil {
		return summary, fmt.Errorf("report summary: %w", err)
	}
	logger.Info("evaluation finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// Evaluate fetches one problem, runs the strategy on a copy of its items and judges the
// solution. The returned error is non-nil only when the problem could not be fetched.
func (e *Evaluator) Evaluate(ctx context.Context, id packing.ProblemID) (Result, error) {
	logger := e.logger.With(zap.Int64("problem_id", int64(id)))

	problem, err := e.supplier.GetProblem(ctx, id)
	if err != nil {
		return Result{}, fmt.Errorf("fetch problem %d: %w", id, err)
	}
	logger.Debug("problem fetched", zap.Stringer("state", StateFetched), zap.Int("items", len(problem.Items)))

	solution, err := e.pack(ctx, problem)
	if err != nil {
		logger.Warn("strategy failed", zap.Error(err))
		result := Result{
			ProblemID: id,
			State:     StateErrorReported,
			Errors:    []string{fmt.Sprintf("Strategy %s failed: %v", e.strategy.Name(), err)},
		}
		e.recorder.ObserveProblem(false, 0, 0)
		return result, nil
	}
	logger.Debug("strategy finished", zap.Stringer("state", StateStrategyRun), zap.String("username", solution.Username))

	result := Judge(problem, solution)
	logger.Debug("solution judged", zap.Stringer("state", result.State), zap.Bool("ok", result.OK))
	e.recorder.ObserveProblem(result.OK, result.Load.WithinCapacity, result.Load.OverCapacity)

	return result, nil
}

func (e *Evaluator) pack(ctx context.Context, p packing.Problem) (solution strategy.Solution, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrStrategyPanic, rec)
		}
	}()
	return e.strategy.Pack(ctx, p.Items.Clone(), p.Capacity)
}

// Diagnose scans the strategy's source for console output. It returns an empty message
// when the strategy does not expose its source or prints nothing.
func (e *Evaluator) Diagnose() (string, error) {
	inspectable, ok := e.strategy.(strategy.Inspectable)
	if !ok {
		return "", nil
	}
	src, err := inspectable.Source()
	if errors.Is(err, strategy.ErrNoSource) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	report, err := diagnostics.Scan(src.Filename, src.Code, src.Function)
	if err != nil {
		return "", err
	}
	return report.Message(), nil
}

// Judge validates a solution for a problem. A passing result is left in StateValidated until
// it is reported; a failing one is final in StateErrorReported.
func Judge(problem packing.Problem, solution strategy.Solution) Result {
	verdict := packing.Assess(problem.Items, problem.Capacity, solution.Carts)

	result := Result{
		ProblemID: problem.ID,
		Username:  solution.Username,
		Nickname:  solution.Nickname,
		Load:      verdict.Load,
		Coverage:  verdict.Coverage,
	}
	if verdict.OK() {
		result.OK = true
		result.State = StateValidated
	} else {
		result.State = StateErrorReported
		result.Errors = verdict.Messages()
	}
	return result
}
