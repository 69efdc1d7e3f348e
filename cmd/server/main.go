package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "media-stamp/docs"
	"media-stamp/internal/bootstrap"
	"media-stamp/internal/delivery/http/handlers"
	"media-stamp/internal/delivery/http/routers"
	"media-stamp/internal/infrastructure/queue"
	infra_repo "media-stamp/internal/infrastructure/repositories"
	"media-stamp/internal/pkg/config"
	"media-stamp/internal/usecases"
	pkglogger "media-stamp/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	log := pkglogger.Must(cfg.Log.Level, cfg.Log.Format)
	defer log.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	services, err := bootstrap.NewServices(ctx, cfg, log)
	if err != nil {
		log.Fatal("service setup failed", zap.Error(err))
	}

	jobRepo := infra_repo.NewInMemoryJobRepository()

	// Jobs go to redis when a worker process is deployed, otherwise to the
	// in-process pool.
	var (
		jobs usecases.JobService
		pool *queue.WorkerPool
		rdb  *redis.Client
	)
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		redisQ := queue.NewRedisQueue(rdb, cfg.Redis.JobKey, cfg.Redis.ResultKey)
		if err := redisQ.Ping(ctx); err != nil {
			log.Fatal("redis unreachable", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
		}
		jobs = usecases.NewJobService(jobRepo, services.Executor, usecases.DispatchFunc(redisQ.Push), log.Named("jobs"))
		go startProcessedQueueListener(ctx, redisQ, jobs, log)
	} else {
		jobs = usecases.NewJobService(jobRepo, services.Executor, usecases.DispatchFunc(func(_ context.Context, job queue.Job) error {
			return pool.AddJob(job)
		}), log.Named("jobs"))
		pool = queue.NewWorkerPool(cfg.Media.Workers, 100, cfg.Media.JobTimeout, jobs.Handle, log.Named("pool"))
	}

	cleanupUC := usecases.NewCleanupService(cfg.Cleanup.Dirs, log.Named("cleanup"))
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Cleanup.Schedule, func() {
		if _, err := cleanupUC.CleanupIntermediates(cfg.Cleanup.MaxAge); err != nil {
			log.Warn("intermediate cleanup failed", zap.Error(err))
		}
	}); err != nil {
		log.Fatal("invalid cleanup schedule", zap.String("schedule", cfg.Cleanup.Schedule), zap.Error(err))
	}
	c.Start()

	app := fiber.New(fiber.Config{
		BodyLimit: cfg.Server.BodyLimit,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(routers.CORSConfig(cfg.Server.AllowOrigins)))

	routers.SetupHealthRoute(app)
	routers.SetupSwaggerRoute(app)
	routers.SetupImageRoutes(app, handlers.NewImageHandler(services.Images, log))
	routers.SetupVideoRoutes(app, handlers.NewVideoHandler(services.Videos, log))
	routers.SetupJobRoutes(app, handlers.NewJobHandler(jobs, log))
	routers.SetupCleanupRoutes(app, handlers.NewCleanupHandler(cleanupUC, cfg.Cleanup.MaxAge, log))

	addr := cfg.Server.Addr()
	log.Info("server starting", zap.String("addr", addr), zap.Bool("redis", cfg.Redis.Enabled))

	// Graceful shutdown
	go func() {
		if err := app.Listen(addr); err != nil {
			log.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutdown signal received")

	ctxShut, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctxShut); err != nil {
		log.Error("server did not shut down cleanly", zap.Error(err))
	}
	<-c.Stop().Done()
	stop()
	if pool != nil {
		pool.Shutdown()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info("server stopped")
}

// startProcessedQueueListener records results pushed back by cmd/worker.
func startProcessedQueueListener(ctx context.Context, q *queue.RedisQueue, jobs usecases.JobService, log *zap.Logger) {
	for {
		processed, err := q.PopResult(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("result pop failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if processed == nil {
			continue
		}
		if err := jobs.Apply(*processed); err != nil {
			log.Warn("job result not recorded", zap.String("job_id", processed.JobID), zap.Error(err))
		}
	}
}
