package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/eugene-kuroles/nakama-proj/internal/adapters/http/api"
	"github.com/eugene-kuroles/nakama-proj/internal/adapters/http/swagger"
	repository "github.com/eugene-kuroles/nakama-proj/internal/adapters/repository"
	app "github.com/eugene-kuroles/nakama-proj/internal/app"
	"github.com/eugene-kuroles/nakama-proj/internal/config"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/reports"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
	"github.com/eugene-kuroles/nakama-proj/pkg/logger"
	"github.com/eugene-kuroles/nakama-proj/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	// reports may legitimately take up to the job timeout
	writeSlack = 5 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "server exited", logger.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	_ = logger.Sync()
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.InitWith(os.Stdout, logger.ParseFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)
	registerRuntimeCollectors()

	store, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	svc := newService(cfg, store)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Warn(context.Background(), "closing store failed", logger.Error(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           newMux(ctx, svc),
		ReadTimeout:       readTimeout,
		WriteTimeout:      time.Duration(cfg.JobTimeoutMS)*time.Millisecond + writeSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return nil
}

func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
		metrics.WithHistogramBuckets(cfg.MetricsBucketsMS),
		metrics.WithConstLabels(cfg.MetricsConstLabels),
	}
}

// registerRuntimeCollectors adds Go runtime and process metrics to the
// service registry.
func registerRuntimeCollectors() {
	reg := metrics.GetRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// newStore opens Postgres when a database URL is configured and falls back
// to synthetic calls otherwise.
func newStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	log := logger.Get()
	if cfg.DatabaseURL == "" {
		seed := testcalls.DefaultConfig()
		seed.Calls = cfg.SeedCalls
		seed.Managers = cfg.SeedManagers
		seed.Seed = cfg.SeedValue
		log.Info(ctx, "no database configured, using synthetic calls", logger.Int("calls", seed.Calls))
		return repository.NewSeededMemoryStore(seed), nil
	}

	store, err := repository.NewPostgresStore(cfg.DatabaseURL,
		repository.WithMaxOpenConns(cfg.DBMaxOpenConns),
		repository.WithLogger(log.Named("repository")),
	)
	if err != nil {
		return nil, err
	}
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info(ctx, "using postgres store")
	return store, nil
}

func newService(cfg *config.Config, store repository.Store) *app.Service {
	return app.New(
		app.WithLogger(logger.Get().Named("service")),
		app.WithStore(store),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.QueueSize),
		app.WithJobTimeout(time.Duration(cfg.JobTimeoutMS)*time.Millisecond),
		app.WithSettings(settingsFrom(cfg)),
	)
}

func settingsFrom(cfg *config.Config) reports.Settings {
	return reports.Settings{
		WeakScoreThreshold:     cfg.WeakScoreThreshold,
		WeakMinCalls:           cfg.WeakMinCalls,
		RiskWeakThreshold:      cfg.RiskWeakThreshold,
		CoachingScoreThreshold: cfg.CoachingScoreThreshold,
		AnomalyThreshold:       cfg.AnomalyThreshold,
		MovingAveragePeriod:    cfg.MovingAveragePeriod,
		RecentCallsLimit:       cfg.RecentCallsLimit,
		ForestTrees:            cfg.ForestTrees,
		ForestSeed:             cfg.ForestSeed,
		ForestMaxDepth:         cfg.ForestMaxDepth,
	}
}

func newMux(ctx context.Context, svc *app.Service) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc).Register(mux)
	return mux
}
