package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fleetopt/internal/config"
	"fleetopt/internal/coordinator"
	"fleetopt/internal/feed"
	"fleetopt/internal/monitor"
	"fleetopt/internal/plan"
	"fleetopt/internal/state"
	"fleetopt/internal/store"
)

// main wires the simulated telemetry feed, the coordinator loop and the
// monitor HTTP surface, then runs until SIGINT/SIGTERM.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Archive selection
	var archive store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.NewPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		defer pg.Close()
		archive = pg
	} else {
		archive = store.NewMemory()
	}

	// Broker selection
	var broker monitor.EventBroker
	if cfg.RedisURL != "" {
		if rb, err := monitor.NewRedisBroker(cfg.RedisURL); err == nil {
			broker = rb
		} else {
			log.Printf("redis broker unavailable, using in-process broker: %v", err)
			broker = monitor.NewBroker()
		}
	} else {
		broker = monitor.NewBroker()
	}

	var solver plan.Solver
	switch cfg.Solver {
	case "greedy":
		solver = plan.GreedySolver{}
	default:
		solver = plan.PartitionSolver{}
	}

	solutions := state.NewSolutionState()
	shared := state.NewSharedState()
	agg := feed.NewAggregator(feed.NewSimProviders(cfg.Factory(), cfg.EventProbability, 0))

	coord := coordinator.New(coordinator.Options{
		Tick:           cfg.Tick(),
		ReplanInterval: cfg.ReplanInterval(),
		Composer:       plan.Composer{Factory: cfg.Factory(), Lookback: cfg.Lookback()},
		Solver:         solver,
		Aggregator:     agg,
		Solutions:      solutions,
		Shared:         shared,
		Archive:        archive,
		Broker:         broker,
	})

	mon := monitor.NewServer(shared, solutions, archive, broker, cfg.RateRPS, cfg.RateBurst)
	mon.Status = func() (string, error) { return coord.State(), coord.Err() }

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           mon.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("monitor listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("monitor server error: %v", err)
		}
	}()

	err = coord.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("coordinator exited: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Println("shutdown complete")
}
