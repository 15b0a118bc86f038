package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/trustlens/transfergraph/internal/chainclient"
	"github.com/trustlens/transfergraph/internal/chainclient/evm"
	"github.com/trustlens/transfergraph/internal/fetcher"
	"github.com/trustlens/transfergraph/internal/gas"
	"github.com/trustlens/transfergraph/internal/orchestrator"
	"github.com/trustlens/transfergraph/pkg/data/neo4j/graphrepo"
	"github.com/trustlens/transfergraph/pkg/metrics"
	"github.com/trustlens/transfergraph/pkg/neo4j"
	"github.com/trustlens/transfergraph/pkg/scheduler"
	"github.com/trustlens/transfergraph/pkg/utils"
)

func run(c *cli.Context) error {
	// Build configuration from CLI flags
	cfg, err := buildConfig(c)
	if err != nil {
		return fmt.Errorf("failed to build config: %w", err)
	}

	sugar, err := utils.NewSugaredLogger(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer sugar.Desugar().Sync() //nolint:errcheck // best-effort flush; ignore sync errors

	sugar.Infow("config",
		"verbose", cfg.Verbose,
		"rpcURL", cfg.RPCURL,
		"contract", cfg.Contract,
		"participant", cfg.Participant,
		"skipGas", cfg.SkipGas,
		"rpcTimeout", cfg.RPCTimeout,
		"interval", cfg.Interval,
		"concurrency", cfg.Concurrency,
		"neo4jURI", cfg.Neo4j.URI,
		"neo4jDatabase", cfg.Neo4j.Database,
		"metricsHost", cfg.MetricsHost,
		"metricsPort", cfg.MetricsPort,
		"environment", cfg.Environment,
	)

	// Initialize Prometheus metrics with labels for multi-instance filtering
	registry := prometheus.NewRegistry()
	m, err := metrics.NewWithLabels(registry, metrics.Labels{
		Contract:    cfg.Contract,
		Environment: cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// Start metrics server
	metricsServer := metrics.NewServer(cfg.MetricsAddr(), registry)
	metricsErrCh := metricsServer.Start()
	sugar.Infof("metrics server listening on http://%s/metrics", metricsServer.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := evm.Dial(ctx, cfg.RPCURL,
		evm.WithMetrics(m),
		evm.WithRPCTimeout(cfg.RPCTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to dial rpc: %w", err)
	}
	defer chainClient.Close()

	graphClient, err := neo4j.New(cfg.Neo4j, sugar)
	if err != nil {
		return fmt.Errorf("failed to create neo4j client: %w", err)
	}
	defer graphClient.Close(context.Background()) //nolint:errcheck // best-effort close on shutdown

	sugar.Info("neo4j client created successfully")

	f := fetcher.New(chainClient, sugar)

	// A nil receipt reader puts the correlator in degraded mode: events
	// persist without gas data instead of failing the run.
	var receipts chainclient.ReceiptReader
	if !cfg.SkipGas {
		receipts = chainClient
	}
	correlator := gas.New(receipts, sugar,
		gas.WithConcurrency(cfg.Concurrency),
		gas.WithMetrics(m),
	)

	writer := graphrepo.NewRepository(graphClient, sugar, graphrepo.WithMetrics(m))
	orch := orchestrator.New(f, correlator, writer, sugar)

	onStatus := func(s graphrepo.Status) {
		if s.State == graphrepo.StateFailed {
			sugar.Errorw("persist status", "state", s.State, "message", s.Message, "error", s.Err)
			return
		}
		sugar.Infow("persist status", "state", s.State, "message", s.Message)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Releasing the signal context shuts the remaining goroutines down
		// once the pipeline finishes or the scheduler exits.
		defer stop()

		if err := orch.Run(gctx, cfg.Contract, cfg.Participant, onStatus); err != nil {
			return err
		}
		if cfg.Interval <= 0 {
			return nil
		}

		sugar.Infow("scheduling periodic re-ingestion", "interval", cfg.Interval)
		return scheduler.Start(gctx, scheduler.DefaultConfig(cfg.Interval), func(runCtx context.Context) error {
			return orch.Run(runCtx, cfg.Contract, cfg.Participant, onStatus)
		})
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case err := <-metricsErrCh:
			if err != nil {
				return fmt.Errorf("metrics server failed: %w", err)
			}
			return nil
		}
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		sugar.Infow("exiting due to context cancellation")
		err = nil
	} else if err != nil {
		sugar.Errorw("run failed", "error", err)
	}

	// Gracefully shutdown metrics server
	sugar.Info("shutting down metrics server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if shutdownErr := metricsServer.Shutdown(shutdownCtx); shutdownErr != nil {
		sugar.Warnw("metrics server shutdown error", "error", shutdownErr)
	}

	sugar.Info("shutdown complete")
	return err
}
