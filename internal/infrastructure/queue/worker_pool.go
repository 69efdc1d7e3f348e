package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrPoolClosed = errors.New("worker pool is shut down")
	ErrPoolFull   = errors.New("job queue is full")
)

type WorkerPool struct {
	JobChan chan Job
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	closed  bool
}

func NewWorkerPool(workerCount, queueSize int, timeout time.Duration, handle JobHandler, log *zap.Logger) *WorkerPool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 100
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool := &WorkerPool{
		JobChan: make(chan Job, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workerCount; i++ {
		worker := &Worker{
			ID:      i,
			JobChan: pool.JobChan,
			Wg:      &pool.wg,
			Handle:  handle,
			Timeout: timeout,
			Log:     log,
		}
		pool.wg.Add(1)
		worker.Start(pool.ctx)
	}
	return pool
}

// AddJob enqueues job without blocking.
func (p *WorkerPool) AddJob(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.JobChan <- job:
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown cancels running jobs, drops queued ones and waits for the workers.
func (p *WorkerPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	close(p.JobChan)
	p.wg.Wait()
}
