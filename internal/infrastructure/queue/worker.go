package queue

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobHandler runs one job. ctx carries the per-job timeout.
type JobHandler func(ctx context.Context, job Job)

type Worker struct {
	ID      int
	JobChan <-chan Job
	Wg      *sync.WaitGroup
	Handle  JobHandler
	Timeout time.Duration // zero means no limit
	Log     *zap.Logger
}

func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer w.Wg.Done()
		for {
			select {
			case job, ok := <-w.JobChan:
				if !ok {
					w.Log.Debug("job channel closed", zap.Int("worker", w.ID))
					return
				}
				select {
				case <-ctx.Done():
					w.Log.Info("job skipped, pool stopping", zap.Int("worker", w.ID), zap.String("job_id", job.ID))
					continue
				default:
					w.process(ctx, job)
				}
			case <-ctx.Done():
				w.Log.Debug("worker stopping", zap.Int("worker", w.ID))
				return
			}
		}
	}()
}

func (w *Worker) process(ctx context.Context, job Job) {
	jobCtx := ctx
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	start := time.Now()
	w.Log.Info("processing job", zap.Int("worker", w.ID), zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	w.Handle(jobCtx, job)
	w.Log.Info("job finished", zap.Int("worker", w.ID), zap.String("job_id", job.ID), zap.Duration("elapsed", time.Since(start)))
}
