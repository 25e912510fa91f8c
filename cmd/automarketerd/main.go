// Copyright (C) 2026, AutoMarketer Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// automarketerd is the AutoMarketer daemon: the campaign API, the
// lifecycle coordinator and the ops endpoints in one process.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/arielsacagiu/AutoMarketerTop/internal/config"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/analytics"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/api"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/budget"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/engine"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/generation"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/log"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/metric"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/sampler"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/schedule"
	"github.com/arielsacagiu/AutoMarketerTop/pkg/storage"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	fmt.Printf("AutoMarketer daemon (automarketerd) %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := log.NewWithLevel(cfg.LogLevel)
	defer logger.Sync()

	store, err := storage.Open(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("open storage", "path", cfg.DBPath, "error", err)
	}
	defer store.Close()

	generator, err := buildGenerator(cfg, logger)
	if err != nil {
		logger.Fatal("build generator", "error", err)
	}

	clock := schedule.RealClock{}
	sched := schedule.New(clock, logger)
	tracker := analytics.NewTracker()
	metrics := metric.New()
	budgets := budget.NewManager(logger)

	coordinator := engine.New(engine.Config{
		Scheduler:         sched,
		Clock:             clock,
		Generator:         generator,
		Sampler:           sampler.NewSynthetic(clock, cfg.RandSeed),
		Content:           store,
		Samples:           store,
		Activity:          store,
		Tracker:           tracker,
		Budgets:           budgets,
		Metrics:           metrics,
		GenerationTimeout: cfg.GenerationTimeout,
		RandSeed:          cfg.RandSeed,
		Logger:            logger,
	})

	sched.Start()
	defer sched.Stop()
	coordinator.StartSystemTicks()

	apiServer := api.NewServer(api.Config{
		Store:       store,
		Coordinator: coordinator,
		Tracker:     tracker,
		Budgets:     budgets,
		Production:  cfg.Environment == "production",
		Logger:      logger,
	})
	defer apiServer.Close()

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiServer.Handler(),
	}
	opsSrv := &http.Server{
		Addr:    cfg.OpsAddr,
		Handler: opsRouter(coordinator, sched, metrics),
	}

	go func() {
		logger.Info("api server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("api server", "error", err)
		}
	}()
	go func() {
		logger.Info("ops server listening", "addr", cfg.OpsAddr)
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("ops server", "error", err)
		}
	}()

	logger.Info("daemon started",
		"env", cfg.Environment,
		"db", cfg.DBPath,
		"gemini", cfg.UseGemini())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("api shutdown", "error", err)
	}
	if err := opsSrv.Shutdown(ctx); err != nil {
		logger.Error("ops shutdown", "error", err)
	}

	logger.Info("daemon stopped")
}

// buildGenerator selects the hosted model when a key is configured and
// the deterministic generator otherwise.
func buildGenerator(cfg *config.Config, logger log.Logger) (generation.Generator, error) {
	if cfg.UseGemini() {
		logger.Info("using gemini generator", "model", cfg.GeminiModel)
		return generation.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	logger.Info("using static generator")
	return generation.NewStatic(), nil
}

// opsRouter serves the operational endpoints kept off the public API
func opsRouter(coordinator *engine.Engine, sched *schedule.Scheduler, metrics *metric.Metrics) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	}).Methods("GET")

	r.HandleFunc("/statusz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"active_campaigns":%d,"pending_events":%d}`,
			len(coordinator.ActiveCampaigns()), sched.Pending())
		fmt.Fprintln(w)
	}).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Gatherer(), promhttp.HandlerOpts{})).Methods("GET")

	return r
}
