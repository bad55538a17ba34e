// README: Entry point; loads config, restores desk state, starts HTTP server and background workers.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"parkdesk/internal/config"
	httptransport "parkdesk/internal/http"
	"parkdesk/internal/infra"
	"parkdesk/internal/metrics"
	"parkdesk/internal/modules/mirror"
	"parkdesk/internal/modules/parking"
	"parkdesk/internal/modules/pricing"
	"parkdesk/internal/snapshot"
)

const serviceName = "parkdesk"

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(logger, cfg); err != nil {
		logger.Error("parkdesk stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	kv, closeKV, err := openKV(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeKV()
	store := snapshot.NewStore(kv, cfg.Store.Namespace)
	writer := snapshot.NewWriter(store, logger)

	tariff, err := pricing.NewStore(cfg.TariffFile).Load()
	if err != nil {
		return fmt.Errorf("load tariff: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(serviceName, reg)

	deps := parking.Deps{Persister: writer, Recorder: m, Seed: cfg.Seed}

	// Persistence loops outlive ctx: they stop only after the HTTP drain.
	bg := newWorkers()
	defer bg.Stop()
	if cfg.Mirror.DSN != "" {
		pool, err := infra.NewDB(ctx, cfg.Mirror.DSN)
		if err != nil {
			return err
		}
		defer pool.Close()
		mir := mirror.NewService(pool, logger, cfg.Mirror.Buffer)
		if err := mir.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Mirror = mir
		bg.Go(mir.Run)
		logger.Info("postgres mirror enabled")
	}

	desk := parking.NewService(store, tariff, logger, deps)
	if err := desk.Load(ctx); err != nil {
		return err
	}

	bg.Go(writer.Run)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		if err := desk.RunSubscriptionScheduler(ctx, cfg.SubscriptionRefresh); err != nil {
			logger.Error("subscription scheduler", "error", err)
		}
	}()

	server := httptransport.NewServer(cfg.HTTP.Addr, httptransport.ServerDeps{
		Parking:  desk,
		Pricing:  pricing.NewService(desk),
		Logger:   logger,
		Metrics:  m,
		Gatherer: reg,
		Location: loc,
	})
	err = server.Run(ctx)
	stop()
	<-schedulerDone
	bg.Stop()
	return err
}

// openKV selects the snapshot backend. The returned func releases it.
func openKV(ctx context.Context, cfg config.Config) (snapshot.KV, func(), error) {
	switch cfg.Store.Kind {
	case config.StoreRedis:
		client, err := infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewRedisKV(client), func() { _ = client.Close() }, nil
	case config.StoreMemory:
		return snapshot.NewMemoryKV(), func() {}, nil
	default:
		kv, err := snapshot.OpenSQLite(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return kv, func() { _ = kv.Close() }, nil
	}
}
