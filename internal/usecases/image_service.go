package usecases

import (
	"context"
	"os"

	"media-stamp/internal/domain/dto"
	"media-stamp/internal/domain/entities"
	"media-stamp/internal/domain/repositories"
	"media-stamp/internal/infrastructure/processor"
	fe "media-stamp/pkg/errors"
	"media-stamp/pkg/file"

	"go.uber.org/zap"
)

const imagesFolder = "images"

// Watermarker writes a watermarked copy of an image and returns its path.
type Watermarker interface {
	ApplyWatermark(sourcePath, watermarkPath string) (string, error)
}

// MetadataNormalizer rewrites the EXIF block of an image into a new file.
type MetadataNormalizer interface {
	NormalizeMetadata(imagePath string) (string, entities.MetadataRecord, entities.MetadataRecord, error)
}

type ImageService interface {
	ProcessImage(ctx context.Context, path, watermarkPath string) dto.ImageResult
	ProcessBatch(ctx context.Context, paths []string, watermarkPath string) []dto.ImageResult
}

type imageService struct {
	watermarker      Watermarker
	normalizer       MetadataNormalizer
	storage          repositories.StorageStrategy
	defaultWatermark string
	log              *zap.Logger
}

// NewImageService wires the image pipeline. storage may be nil, in which case
// outputs stay next to their sources.
func NewImageService(w Watermarker, n MetadataNormalizer, storage repositories.StorageStrategy, defaultWatermark string, log *zap.Logger) ImageService {
	if log == nil {
		log = zap.NewNop()
	}
	return &imageService{
		watermarker:      w,
		normalizer:       n,
		storage:          storage,
		defaultWatermark: defaultWatermark,
		log:              log,
	}
}

func (s *imageService) ProcessImage(ctx context.Context, path, watermarkPath string) dto.ImageResult {
	res := dto.ImageResult{Source: path}
	if watermarkPath == "" {
		watermarkPath = s.defaultWatermark
	}

	if err := ctx.Err(); err != nil {
		res.Error = fe.UserMessage(fe.ErrInternal(err))
		return res
	}
	asset := entities.NewMediaAsset(path)
	if asset.Kind != entities.KindImage {
		res.Error = fe.UserMessage(fe.ErrUnsupported(asset.Base() + " is not a supported image file"))
		return res
	}
	if _, err := os.Stat(path); err != nil {
		res.Error = fe.UserMessage(fe.ErrNotFound(path, err))
		return res
	}

	intermediate, err := s.watermarker.ApplyWatermark(path, watermarkPath)
	if err != nil {
		s.log.Warn("watermark failed", zap.String("path", path), zap.Error(err))
		res.Error = fe.UserMessage(err)
		return res
	}
	res.Intermediate = intermediate

	out, before, after, err := s.normalizer.NormalizeMetadata(intermediate)
	if err != nil {
		s.log.Warn("metadata normalization failed", zap.String("path", intermediate), zap.Error(err))
		res.Error = fe.UserMessage(err)
		return res
	}
	res.Output = out
	res.Folder = entities.NewMediaAsset(out).Dir()
	res.Before = processor.FormatRecord(before)
	res.After = processor.FormatRecord(after)

	hash, err := file.CalculateFileHash(out)
	if err != nil {
		res.Error = fe.UserMessage(fe.ErrInternal(err))
		return res
	}
	res.SHA256 = hash

	if s.storage != nil {
		location, err := s.storage.Publish(ctx, out, imagesFolder)
		if err != nil {
			s.log.Warn("publish failed", zap.String("output", out), zap.Error(err))
			res.Error = fe.UserMessage(fe.ErrInternal(err))
			return res
		}
		res.Published = location
	}

	s.log.Info("image processed", zap.String("path", path), zap.String("output", out))
	return res
}

// ProcessBatch handles paths in order. A failure is recorded on that file's
// result and the batch moves on.
func (s *imageService) ProcessBatch(ctx context.Context, paths []string, watermarkPath string) []dto.ImageResult {
	results := make([]dto.ImageResult, 0, len(paths))
	for _, p := range paths {
		results = append(results, s.ProcessImage(ctx, p, watermarkPath))
	}
	return results
}
