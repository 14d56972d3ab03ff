// Package worker runs report jobs off the request goroutine.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/eugene-kuroles/nakama-proj/internal/adapters/mq/queue"
	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
	"github.com/eugene-kuroles/nakama-proj/pkg/logger"
	"github.com/eugene-kuroles/nakama-proj/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Loader fetches the calls a report is built from.
type Loader interface {
	LoadCalls(ctx context.Context, q model.CallQuery) ([]model.Call, error)
}

// Builder turns calls into a report.
type Builder interface {
	Build(ctx context.Context, req model.ReportRequest, calls []model.Call) (any, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan *queue.Job
}

// Worker processes report jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue   Queue
	loader  Loader
	builder Builder
	name    string

	jobTimeout time.Duration
	processed  *atomic.Int64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, loader Loader, builder Builder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		loader:    loader,
		builder:   builder,
		name:      "worker",
		processed: new(atomic.Int64),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Warn(ctx, "report job failed",
					logger.String("job", j.ID.String()),
					logger.String("kind", string(j.Request.Kind)),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process loads the calls, builds the report and completes the job. The job
// is always completed, including when the builder panics.
func (w *InMemoryWorker) process(ctx context.Context, j *queue.Job) (err error) {
	kind := string(j.Request.Kind)
	start := time.Now()
	metrics.AddWorkerBusy(1)

	var (
		value any
		calls []model.Call
	)
	defer func() {
		metrics.AddWorkerBusy(-1)
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
		if err != nil {
			metrics.RecordReportFailed(kind)
			metrics.RecordWorkerError()
		} else {
			metrics.RecordReportBuilt(kind, float64(time.Since(start).Microseconds())/1000, len(calls))
		}
		w.processed.Add(1)
		j.Complete(value, err)
	}()

	if w.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.jobTimeout)
		defer cancel()
	}

	calls, err = w.loader.LoadCalls(ctx, j.Request.Query)
	if err != nil {
		return fmt.Errorf("load calls: %w", err)
	}
	value, err = w.builder.Build(ctx, j.Request, calls)
	if err != nil {
		return fmt.Errorf("build %s report: %w", kind, err)
	}
	w.logger.Debug(ctx, "report built",
		logger.String("job", j.ID.String()),
		logger.String("kind", kind),
		logger.Int("calls", len(calls)),
		logger.Duration("took", time.Since(start)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed *atomic.Int64

	shutdown chan struct{}
	once     sync.Once

	logger logger.Logger
}

// NewPool creates a pool of workerCount workers; opts apply to every worker.
func NewPool(workerCount int, q Queue, loader Loader, builder Builder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers:   make([]*InMemoryWorker, workerCount),
		queue:     q,
		processed: new(atomic.Int64),
		shutdown:  make(chan struct{}),
		logger:    logger.Get().Named("worker-pool"),
	}

	for i := range workerCount {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		wopts = append(wopts, withCounter(pool.processed))
		pool.workers[i] = NewInMemoryWorker(q, loader, builder, wopts...)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns the number of jobs completed since the pool was created.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}

	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater periodically republishes pool gauges.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			metrics.UpdateWorkerCount(len(p.workers))
			if l, ok := p.queue.(interface{ Len(context.Context) int }); ok {
				metrics.UpdateQueueSize(l.Len(ctx))
			}
		}
	}
}

// Stop signals every worker without draining and waits a bounded time for
// each. It is the hard stop after Shutdown gives up; jobs still queued are
// left to the queue's consumer context.
func (p *Pool) Stop() {
	p.signal()
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
			p.logger.Warn(context.Background(), "worker did not stop in time", logger.String("worker", w.name))
		}
	}
	metrics.UpdateWorkerCount(0)
}

// Shutdown closes the queue so no new jobs arrive and lets the workers drain
// what is already queued. Workers still busy when ctx expires are signalled
// to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			p.signal()
			return fmt.Errorf("pool shutdown: %w", shutdownCtx.Err())
		}
	}
	p.signal()
	metrics.UpdateWorkerCount(0)

	return nil
}

func (p *Pool) signal() {
	p.once.Do(func() {
		close(p.shutdown)
		for _, w := range p.workers {
			close(w.shutdown)
		}
	})
}
