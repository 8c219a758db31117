package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cartcheck/internal/api"
	"github.com/eugenenazirov/cartcheck/internal/config"
	"github.com/eugenenazirov/cartcheck/internal/evaluation"
	"github.com/eugenenazirov/cartcheck/internal/metrics"
	"github.com/eugenenazirov/cartcheck/internal/strategy"
	"github.com/eugenenazirov/cartcheck/internal/supplier"
)

// App encapsulates the application dependencies: the evaluation loop and the HTTP server.
type App struct {
	cfg       config.Config
	supplier  supplier.Supplier
	strategy  strategy.Strategy
	registry  *prometheus.Registry
	evaluator *evaluation.Evaluator
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
}

// New opens the configured problem backend and wires every dependency around it.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	sup, err := supplier.Open(ctx, cfg.SupplierOptions(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s supplier: %w", cfg.Backend, err)
	}

	app, err := NewWithSupplier(cfg, sup, logger)
	if err != nil {
		_ = sup.Close()
		return nil, err
	}
	return app, nil
}

// NewWithSupplier wires the application around an already opened supplier.
func NewWithSupplier(cfg config.Config, sup supplier.Supplier, logger *zap.Logger) (*App, error) {
	strat, err := strategy.New(cfg.Strategy, cfg.StrategyOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create strategy: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	recorder, err := metrics.NewRecorder(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	evaluator := evaluation.New(sup, strat, logger, evaluation.WithRecorder(recorder))

	handler := api.NewHandler(sup, api.WithRecorder(recorder))
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})),
	)

	return &App{
		cfg:       cfg,
		supplier:  sup,
		strategy:  strat,
		registry:  registry,
		evaluator: evaluator,
		handler:   handler,
		router:    router,
		logger:    logger,
		server:    NewServer(cfg, router),
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Evaluate runs the configured strategy over every problem and writes the report to w.
func (a *App) Evaluate(ctx context.Context, w io.Writer) (evaluation.Summary, error) {
	reporter, err := evaluation.NewReporter(a.cfg.ReportFormat, w)
	if err != nil {
		return evaluation.Summary{}, err
	}
	return a.evaluator.Run(ctx, reporter)
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Close releases the problem supplier.
func (a *App) Close() error {
	return a.supplier.Close()
}
