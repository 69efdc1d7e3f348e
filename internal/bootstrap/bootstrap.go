// Package bootstrap builds the pipeline services from configuration. The
// server, the worker and the command line tool share it.
package bootstrap

import (
	"context"
	"fmt"

	"media-stamp/internal/domain/entities"
	"media-stamp/internal/domain/repositories"
	"media-stamp/internal/infrastructure/processor"
	"media-stamp/internal/infrastructure/storage"
	"media-stamp/internal/pkg/config"
	"media-stamp/internal/usecases"

	"go.uber.org/zap"
)

type Services struct {
	Images   usecases.ImageService
	Videos   usecases.VideoService
	Executor usecases.JobExecutor
	Storage  repositories.StorageStrategy
}

func Identity(cfg config.IdentityConfig) entities.Identity {
	return entities.Identity{
		Organization: cfg.Organization,
		Author:       cfg.Author,
		Contact:      cfg.Contact,
		ProjectLabel: cfg.ProjectLabel,
		Copyright:    cfg.Copyright,
	}
}

func WatermarkOptions(cfg config.MediaConfig) processor.WatermarkOptions {
	return processor.WatermarkOptions{
		SizeFraction:   cfg.WatermarkSize,
		Opacity:        cfg.WatermarkOpacity,
		Angle:          cfg.WatermarkAngle,
		StrideFraction: cfg.WatermarkStride,
		JPEGQuality:    cfg.JPEGQuality,
	}
}

// NewStorage returns nil for the "none" driver.
func NewStorage(ctx context.Context, cfg config.StorageConfig) (repositories.StorageStrategy, error) {
	switch cfg.Driver {
	case config.StorageNone, "":
		return nil, nil
	case config.StorageLocal:
		return storage.NewLocalStorage(cfg.ExportDir), nil
	case config.StorageS3:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required for the s3 storage driver")
		}
		s3Storage, err := storage.NewS3Storage(ctx, cfg.Bucket, cfg.Region, cfg.Prefix)
		if err != nil {
			return nil, err
		}
		return s3Storage, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func NewServices(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Services, error) {
	opts := WatermarkOptions(cfg.Media)
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	store, err := NewStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	id := Identity(cfg.Identity)
	runner := processor.ExecRunner{}

	images := usecases.NewImageService(
		processor.NewCompositor(opts, log.Named("watermark")),
		processor.NewNormalizer(id, cfg.Media.JPEGQuality, log.Named("metadata")),
		store,
		cfg.Media.WatermarkPath,
		log.Named("images"),
	)
	videos := usecases.NewVideoService(
		processor.NewInspector(cfg.Media.FFprobePath, runner, log.Named("probe")),
		processor.NewRewriter(cfg.Media.FFmpegPath, runner, id, log.Named("ffmpeg")),
		store,
		log.Named("videos"),
	)

	return &Services{
		Images:   images,
		Videos:   videos,
		Executor: usecases.NewJobExecutor(images, videos),
		Storage:  store,
	}, nil
}
