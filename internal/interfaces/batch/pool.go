package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	jobTracer          = otel.Tracer("finlink/batch")
	jobMeter           = otel.Meter("finlink/batch")
	jobDuration, _     = jobMeter.Float64Histogram("batch.job.duration", metric.WithDescription("Job execution duration in seconds"), metric.WithUnit("s"))
	jobTotal, _        = jobMeter.Int64Counter("batch.job.total", metric.WithDescription("Total jobs executed by status"))
	jobQueueDropped, _ = jobMeter.Int64Counter("batch.job.queue_dropped", metric.WithDescription("Jobs dropped due to full queue"))
)

// ErrQueueFull is returned by Submit when the job buffer has no room.
var ErrQueueFull = errors.New("job queue full")

// Job is one unit of work. Key identifies it in logs and spans.
type Job interface {
	Key() string
	Execute(ctx context.Context) error
}

// Canceler is implemented by jobs that must learn they were never run.
// The pool calls Cancel for every job still queued when it stops.
type Canceler interface {
	Cancel(err error)
}

// Pool runs submitted jobs on a fixed number of goroutines.
type Pool struct {
	workerCount int
	jobTimeout  time.Duration
	jobs        chan Job
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewPool creates a pool whose workers stop when ctx is cancelled. Each job
// gets at most jobTimeout; zero means no per-job limit.
func NewPool(ctx context.Context, workerCount, queueSize int, jobTimeout time.Duration) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workerCount: workerCount,
		jobTimeout:  jobTimeout,
		jobs:        make(chan Job, queueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	log.Debug().Int("workers", p.workerCount).Msg("starting worker pool")

	for i := 1; i <= p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		if p.ctx.Err() != nil {
			return
		}
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.processJob(id, job)
		}
	}
}

// processJob runs one job under its own span. Job errors are recorded, not
// propagated; jobs report results through their own state.
func (p *Pool) processJob(workerID int, job Job) {
	ctx := p.ctx
	if p.jobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.jobTimeout)
		defer cancel()
	}

	ctx, span := jobTracer.Start(ctx, "job.execute",
		trace.WithAttributes(
			attribute.Int("worker.id", workerID),
			attribute.String("job.key", job.Key()),
		),
	)
	defer span.End()

	start := time.Now()
	err := job.Execute(ctx)
	jobDuration.Record(ctx, time.Since(start).Seconds())

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "error")))
		log.Warn().Err(err).Int("worker", workerID).Str("job", job.Key()).Msg("job failed")
		return
	}

	jobTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "success")))
	log.Debug().Int("worker", workerID).Str("job", job.Key()).Msg("job completed")
}

// Submit queues a job without blocking. It fails with ErrQueueFull when the
// buffer is full and with the context error once the pool is cancelled.
func (p *Pool) Submit(job Job) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobs <- job:
		return nil
	default:
		jobQueueDropped.Add(context.Background(), 1)
		return fmt.Errorf("%w: dropping %s", ErrQueueFull, job.Key())
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish. Jobs
// left in the queue because the pool was cancelled are handed to drain.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
	p.drain()
	p.cancel()
}

// ShutdownWithTimeout is Shutdown bounded by timeout. Workers still running
// at the deadline see their context cancelled and queued jobs are drained.
// It reports whether every worker finished in time.
func (p *Pool) ShutdownWithTimeout(timeout time.Duration) bool {
	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.drain()
		p.cancel()
		return true
	case <-time.After(timeout):
		log.Warn().Dur("timeout", timeout).Msg("worker pool shutdown timed out")
		p.cancel()
		p.drain()
		return false
	}
}

// drain empties the closed queue, telling each Canceler why it did not run.
func (p *Pool) drain() {
	cause := p.ctx.Err()
	if cause == nil {
		cause = context.Canceled
	}

	dropped := 0
	for job := range p.jobs {
		dropped++
		jobTotal.Add(context.Background(), 1, metric.WithAttributes(attribute.String("status", "cancelled")))
		if c, ok := job.(Canceler); ok {
			c.Cancel(cause)
		}
	}
	if dropped > 0 {
		log.Warn().Err(cause).Int("jobs", dropped).Msg("discarded queued jobs")
	}
}
