package queue

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eugene-kuroles/nakama-proj/internal/domain/model"
)

// Result is the outcome of a report job.
type Result struct {
	Value any
	Err   error
}

// Job is one report request waiting for a worker.
type Job struct {
	ID         uuid.UUID
	Request    model.ReportRequest
	EnqueuedAt time.Time

	reply chan Result
	once  sync.Once
}

// NewJob wraps req with a fresh id and a one-slot reply channel.
func NewJob(req model.ReportRequest) *Job {
	return &Job{
		ID:      uuid.New(),
		Request: req,
		reply:   make(chan Result, 1),
	}
}

// Reply delivers the job's single result.
func (j *Job) Reply() <-chan Result { return j.reply }

// Complete records the result. Only the first call has an effect, and it
// never blocks even when nobody is waiting any more.
func (j *Job) Complete(value any, err error) {
	j.once.Do(func() {
		j.reply <- Result{Value: value, Err: err}
	})
}

// Wait returns time spent in the queue so far.
func (j *Job) Wait() time.Duration {
	if j.EnqueuedAt.IsZero() {
		return 0
	}
	return time.Since(j.EnqueuedAt)
}
