package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cartcheck/internal/application"
	"github.com/eugenenazirov/cartcheck/internal/config"
	"github.com/eugenenazirov/cartcheck/internal/logging"
	"github.com/eugenenazirov/cartcheck/internal/supplier"
)

var signalNotify = signal.Notify

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "cartcheck: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	app *kingpin.Application

	configFile   *string
	backend      *string
	problemsFile *string
	strategy     *string
	username     *string
	logLevel     *string

	evaluate     *kingpin.CmdClause
	command      *string
	source       *string
	function     *string
	reportFormat *string

	serve          *kingpin.CmdClause
	port           *string
	rateLimitRPS   *float64
	rateLimitBurst *int

	load     *kingpin.CmdClause
	loadFile *string
}

func newCLI() *cli {
	c := &cli{app: kingpin.New("cartcheck", "Cart loading evaluation harness - validates packing solutions against cart capacity and item coverage")}

	c.configFile = c.app.Flag("config", "Path to YAML configuration file").String()
	c.backend = c.app.Flag("backend", "Problem backend: mysql, redis or file").String()
	c.problemsFile = c.app.Flag("problems-file", "YAML problem set used by the file backend").String()
	c.strategy = c.app.Flag("strategy", "Packing strategy: template, first-fit-decreasing or command").String()
	c.username = c.app.Flag("username", "Username reported by strategies that do not set one").String()
	c.logLevel = c.app.Flag("log-level", "Log level: debug, info, warn or error").String()

	c.evaluate = c.app.Command("evaluate", "Run the strategy against every problem and print the report").Default()
	c.command = c.evaluate.Flag("command", "External solver command line, used by the command strategy").String()
	c.source = c.evaluate.Flag("source", "Source file of the external solver, scanned for console output").String()
	c.function = c.evaluate.Flag("function", "Function holding the solver algorithm").String()
	c.reportFormat = c.evaluate.Flag("format", "Report format: text or json").String()

	c.serve = c.app.Command("serve", "Serve the submission API")
	c.port = c.serve.Flag("port", "HTTP port exposed by the service").String()
	c.rateLimitRPS = c.serve.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	c.rateLimitBurst = c.serve.Flag("rate-limit-burst", "Burst capacity for rate limiter").Default("-1").Int()

	c.load = c.app.Command("load", "Copy a YAML problem set into Redis")
	c.loadFile = c.load.Arg("file", "YAML problem set").Required().ExistingFile()

	return c
}

func (c *cli) overrides() *config.CLIOverrides {
	overrides := &config.CLIOverrides{
		ConfigFile:       *c.configFile,
		Backend:          c.backend,
		ProblemsFile:     c.problemsFile,
		Strategy:         c.strategy,
		StrategySource:   c.source,
		StrategyFunction: c.function,
		Username:         c.username,
		ReportFormat:     c.reportFormat,
		LogLevel:         c.logLevel,
		Port:             c.port,
	}

	if fields := strings.Fields(*c.command); len(fields) > 0 {
		overrides.StrategyCommand = &fields
	}

	if *c.rateLimitRPS >= 0 {
		overrides.RateLimitRPS = c.rateLimitRPS
	}

	if *c.rateLimitBurst >= 0 {
		overrides.RateLimitBurst = c.rateLimitBurst
	}

	return overrides
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	c := newCLI()
	command, err := c.app.Parse(args)
	if err != nil {
		return err
	}

	overrides := c.overrides()
	if command == c.load.FullCommand() {
		backend := supplier.BackendRedis
		overrides.Backend = &backend
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if command == c.load.FullCommand() {
		return loadProblems(ctx, *c.loadFile, supplier.NewRedis(cfg.Redis, logger), logger)
	}

	app, err := application.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close supplier", zap.Error(err))
		}
	}()

	if command == c.serve.FullCommand() {
		if err := app.Start(); err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
		return nil
	}

	if _, err := app.Evaluate(ctx, stdout); err != nil {
		return fmt.Errorf("evaluation aborted: %w", err)
	}
	return nil
}

func loadProblems(ctx context.Context, path string, dst *supplier.Redis, logger *zap.Logger) error {
	defer func() {
		_ = dst.Close()
	}()

	src, err := supplier.LoadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read problems: %w", err)
	}

	ids, err := src.ListProblemIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		problem, err := src.GetProblem(ctx, id)
		if err != nil {
			return err
		}
		if err := dst.Put(ctx, problem); err != nil {
			return fmt.Errorf("failed to store problem %d: %w", id, err)
		}
	}

	logger.Info("problems loaded", zap.String("file", path), zap.Int("problems", len(ids)))
	return nil
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
