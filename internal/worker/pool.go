package worker

import (
	"context"
	"sync"
	"time"

	"github.com/coursely/payrelay/internal/config"
	obsmetrics "github.com/coursely/payrelay/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Job func(ctx context.Context)

type Params struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// Pool executes webhook fan-out jobs off the acknowledgement path. The queue
// is bounded; a full queue rejects the job instead of blocking the webhook
// response.
type Pool struct {
	log        *zap.Logger
	jobs       chan Job
	workers    int
	jobTimeout time.Duration
	metrics    *obsmetrics.Metrics
	wg         sync.WaitGroup
}

func New(p Params) *Pool {
	workers := p.Cfg.Worker.Workers
	if workers <= 0 {
		workers = 4
	}
	queueSize := p.Cfg.Worker.QueueSize
	if queueSize <= 0 {
		queueSize = 256
	}
	jobTimeout := p.Cfg.Worker.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = time.Minute
	}
	return &Pool{
		log:        p.Log.Named("worker"),
		jobs:       make(chan Job, queueSize),
		workers:    workers,
		jobTimeout: jobTimeout,
		metrics:    p.Metrics,
	}
}

// Submit enqueues a job, reporting false when the queue is full.
func (p *Pool) Submit(job Job) bool {
	select {
	case p.jobs <- job:
		p.metrics.QueueDepthAdd(1)
		return true
	default:
		p.metrics.IncQueueDropped()
		return false
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

// Stop closes the queue and waits for in-flight jobs, bounded by ctx.
func (p *Pool) Stop(ctx context.Context) error {
	close(p.jobs)
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.metrics.QueueDepthAdd(-1)
		p.execute(job)
	}
}

func (p *Pool) execute(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.jobTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker job panicked", zap.Any("panic", r))
		}
	}()
	job(ctx)
}

var Module = fx.Module("worker",
	fx.Provide(New),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, pool *Pool) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			pool.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop(ctx)
		},
	})
}
