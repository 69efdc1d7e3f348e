package main //worker

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"media-stamp/internal/bootstrap"
	"media-stamp/internal/infrastructure/queue"
	"media-stamp/internal/pkg/config"
	"media-stamp/internal/usecases"
	pkglogger "media-stamp/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	log := pkglogger.Must(cfg.Log.Level, cfg.Log.Format).Named("worker")
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.NewServices(ctx, cfg, log)
	if err != nil {
		log.Fatal("service setup failed", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer rdb.Close()
	q := queue.NewRedisQueue(rdb, cfg.Redis.JobKey, cfg.Redis.ResultKey)
	log.Info("worker started", zap.String("redis", cfg.Redis.Addr()), zap.String("queue", cfg.Redis.JobKey))

	// BRPOP loop to process jobs
	for {
		job, err := q.Pop(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Warn("job pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}
		runJob(ctx, q, services.Executor, *job, cfg.Media.JobTimeout, log)
	}
	log.Info("worker stopped")
}

func runJob(ctx context.Context, q *queue.RedisQueue, exec usecases.JobExecutor, job queue.Job, timeout time.Duration, log *zap.Logger) {
	jobCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	log.Info("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
	processed := exec.Execute(jobCtx, job)
	log.Info("job finished",
		zap.String("job_id", job.ID),
		zap.String("status", processed.Status),
		zap.Duration("elapsed", time.Since(start)),
	)

	// The result must reach the server even when the worker is stopping.
	if err := q.PushResult(context.Background(), processed); err != nil {
		log.Error("result push failed", zap.String("job_id", job.ID), zap.Error(err))
	}
}
