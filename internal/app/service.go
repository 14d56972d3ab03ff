// Package service wires the call store, the report queue and the worker pool
// behind the operations the HTTP API needs.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	reportqueue "github.com/eugene-kuroles/nakama-proj/internal/adapters/mq/queue"
	workerpool "github.com/eugene-kuroles/nakama-proj/internal/adapters/mq/worker"
	repository "github.com/eugene-kuroles/nakama-proj/internal/adapters/repository"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/reports"
	"github.com/eugene-kuroles/nakama-proj/internal/testcalls"
	"github.com/eugene-kuroles/nakama-proj/pkg/logger"
	"github.com/eugene-kuroles/nakama-proj/pkg/metrics"
)

const (
	defaultQueueSize  = 256
	defaultJobTimeout = 30 * time.Second
	stopTimeout       = 10 * time.Second
)

// Service builds reports asynchronously on a bounded worker pool.
type Service struct {
	mu sync.RWMutex

	// Core components
	store   repository.Store
	queue   *reportqueue.InMemoryQueue
	pool    *workerpool.Pool
	builder *reports.Builder

	// Configuration
	workerCount    int
	queueSize      int
	jobTimeout     time.Duration
	settings       reports.Settings
	builderOptions []reports.Option
	seed           testcalls.Config

	// State
	started bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of report workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of waiting report jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithJobTimeout bounds how long Submit waits for a report.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithStore sets the call source. Without it the service seeds an
// in-memory store with synthetic calls.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSeed sizes the synthetic data set used when no store is given.
func WithSeed(cfg testcalls.Config) Option {
	return func(s *Service) {
		s.seed = cfg
	}
}

// WithSettings sets the report thresholds.
func WithSettings(settings reports.Settings) Option {
	return func(s *Service) {
		s.settings = settings
	}
}

// WithBuilderOptions passes options through to the report builder.
func WithBuilderOptions(opts ...reports.Option) Option {
	return func(s *Service) {
		s.builderOptions = append(s.builderOptions, opts...)
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		jobTimeout:  defaultJobTimeout,
		settings:    reports.DefaultSettings(),
		seed:        testcalls.DefaultConfig(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start creates the queue and the worker pool. Starting a started service
// is a no-op.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	if s.store == nil {
		s.store = repository.NewSeededMemoryStore(s.seed)
		s.logger.Info(ctx, "using in-memory store with synthetic calls",
			logger.Int("calls", s.seed.Calls),
			logger.Int("managers", s.seed.Managers),
		)
	}
	s.builder = reports.NewBuilder(s.settings, s.builderOptions...)
	s.queue = reportqueue.NewInMemoryQueue(
		reportqueue.WithCapacity(s.queueSize),
		reportqueue.WithBufferSize(s.queueSize),
	)

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store, s.builder,
		workerpool.WithJobTimeout(s.jobTimeout),
	)
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "report service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Duration("jobTimeout", s.jobTimeout),
	)

	return nil
}

// Stop drains the queue and stops the workers. Reports still running when the
// drain times out are cancelled. The store stays open so the service can be
// started again.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain, cancelling in-flight reports", logger.Error(err))
		s.cancel()
		s.pool.Stop()
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "report service stopped")
}

// Close stops the service and releases the store.
func (s *Service) Close() error {
	s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// Submit queues req and waits for the report. A full queue fails fast with
// ErrBackpressure; a report not ready within the job timeout yields
// ErrTimeout.
func (s *Service) Submit(ctx context.Context, req model.ReportRequest) (any, error) {
	j := reportqueue.NewJob(req)

	// Enqueue never blocks, so it runs under the read lock and Stop cannot
	// close the queue in between.
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return nil, ErrNotStarted
	}
	q, timeout := s.queue, s.jobTimeout
	accepted := q.Enqueue(ctx, j)
	s.mu.RUnlock()

	if !accepted {
		if q.IsClosed() {
			return nil, ErrNotStarted
		}
		s.logger.Warn(ctx, "report rejected, queue full",
			logger.String("kind", string(req.Kind)),
			logger.Int("queueLength", q.Len(ctx)),
		)
		return nil, ErrBackpressure
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-j.Reply():
		return res.Value, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"jobTimeoutMs": s.jobTimeout.Milliseconds(),
	}

	if s.started {
		queueLen := s.queue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["processedJobs"] = s.pool.Processed()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.pool.Size())
	}
	if s.store != nil {
		if n, err := s.store.Count(ctx); err == nil {
			stats["totalCalls"] = n
		}
	}

	return stats
}
