package usecases

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"media-stamp/internal/domain/dto"
	"media-stamp/internal/domain/entities"
	"media-stamp/internal/domain/repositories"
	fe "media-stamp/pkg/errors"
	"media-stamp/pkg/file"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const videosFolder = "videos"

// TagProber reads the flat container tag set of a video.
type TagProber interface {
	Probe(ctx context.Context, path string) (entities.VideoTagSet, error)
}

// VideoRewriter runs the external transcoder.
type VideoRewriter interface {
	Rewrite(ctx context.Context, req entities.RewriteRequest) (entities.TranscodeResult, error)
	Camouflage(ctx context.Context, inputPath, outputPath string) (entities.TranscodeResult, error)
}

type VideoService interface {
	Inspect(ctx context.Context, path string) dto.InspectResult
	InspectBatch(ctx context.Context, paths []string) []dto.InspectResult
	Rewrite(ctx context.Context, req dto.RewriteVideoRequest) dto.VideoResult
	Camouflage(ctx context.Context, path string) dto.VideoResult
	CamouflageBatch(ctx context.Context, paths []string) []dto.VideoResult
}

type videoService struct {
	prober   TagProber
	rewriter VideoRewriter
	storage  repositories.StorageStrategy
	log      *zap.Logger
}

func NewVideoService(prober TagProber, rewriter VideoRewriter, storage repositories.StorageStrategy, log *zap.Logger) VideoService {
	if log == nil {
		log = zap.NewNop()
	}
	return &videoService{
		prober:   prober,
		rewriter: rewriter,
		storage:  storage,
		log:      log,
	}
}

// checkVideo is the gate shared by every video operation.
func checkVideo(path string) error {
	asset := entities.NewMediaAsset(path)
	if asset.Kind != entities.KindVideo || !file.IsMP4File(path) {
		return fe.ErrUnsupported(asset.Base() + " is not a valid MP4 file")
	}
	if _, err := os.Stat(path); err != nil {
		return fe.ErrNotFound(path, err)
	}
	return nil
}

func (s *videoService) Inspect(ctx context.Context, path string) dto.InspectResult {
	res := dto.InspectResult{Path: path}
	if err := checkVideo(path); err != nil {
		res.Error = fe.UserMessage(err)
		return res
	}

	tags, err := s.prober.Probe(ctx, path)
	if err != nil {
		s.log.Warn("probe failed", zap.String("path", path), zap.Error(err))
		res.Error = fe.UserMessage(err)
		return res
	}
	res.Tags = tags
	res.Keys = tags.Keys()
	return res
}

func (s *videoService) InspectBatch(ctx context.Context, paths []string) []dto.InspectResult {
	return lo.Map(paths, func(p string, _ int) dto.InspectResult {
		return s.Inspect(ctx, p)
	})
}

func (s *videoService) Rewrite(ctx context.Context, req dto.RewriteVideoRequest) dto.VideoResult {
	res := dto.VideoResult{Source: req.Path}
	if err := checkVideo(req.Path); err != nil {
		res.Error = fe.UserMessage(err)
		return res
	}

	rr := entities.RewriteRequest{
		InputPath:  req.Path,
		OutputPath: file.DerivedPath(req.Path, file.SuffixEdited),
		Tags:       NormalizeTags(req.Tags),
		Filters: entities.FilterChain{
			Video: NormalizeFilter(req.VideoFilter),
			Audio: NormalizeFilter(req.AudioFilter),
		},
	}

	out, err := s.rewriter.Rewrite(ctx, rr)
	if err != nil {
		s.log.Warn("rewrite failed", zap.String("path", req.Path), zap.Error(err))
		res.Error = fe.UserMessage(err)
		return res
	}
	return s.finish(ctx, res, out)
}

func (s *videoService) Camouflage(ctx context.Context, path string) dto.VideoResult {
	res := dto.VideoResult{Source: path}
	if err := checkVideo(path); err != nil {
		res.Error = fe.UserMessage(err)
		return res
	}

	out, err := s.rewriter.Camouflage(ctx, path, file.DerivedPath(path, file.SuffixCamouflage))
	if err != nil {
		s.log.Warn("camouflage failed", zap.String("path", path), zap.Error(err))
		res.Error = fe.UserMessage(err)
		return res
	}
	return s.finish(ctx, res, out)
}

// CamouflageBatch prefixes every message with the file name so a combined
// report stays readable.
func (s *videoService) CamouflageBatch(ctx context.Context, paths []string) []dto.VideoResult {
	return lo.Map(paths, func(p string, _ int) dto.VideoResult {
		res := s.Camouflage(ctx, p)
		name := filepath.Base(p)
		if res.Failed() {
			res.Error = name + ": " + res.Error
		} else {
			res.Message = name + ": " + res.Message
		}
		return res
	})
}

func (s *videoService) finish(ctx context.Context, res dto.VideoResult, out entities.TranscodeResult) dto.VideoResult {
	res.Output = out.OutputPath
	res.Folder = filepath.Dir(out.OutputPath)
	res.Message = out.Message
	res.Reencoded = out.Reencoded
	res.Args = out.Args

	if s.storage != nil {
		location, err := s.storage.Publish(ctx, out.OutputPath, videosFolder)
		if err != nil {
			s.log.Warn("publish failed", zap.String("output", out.OutputPath), zap.Error(err))
			res.Error = fe.UserMessage(fe.ErrInternal(err))
			return res
		}
		res.Published = location
	}

	s.log.Info("video written", zap.String("path", res.Source), zap.String("output", res.Output))
	return res
}

// NormalizeTags trims keys and values and drops entries left blank. The
// result is ordered by key.
func NormalizeTags(tags map[string]string) []entities.Tag {
	trimmed := lo.MapEntries(tags, func(k, v string) (string, string) {
		return strings.TrimSpace(k), strings.TrimSpace(v)
	})
	kept := lo.PickBy(trimmed, func(k, v string) bool {
		return k != "" && v != ""
	})
	return entities.TagsFromMap(kept)
}

// NormalizeFilter treats a blank expression as no filter.
func NormalizeFilter(f *string) *string {
	if f == nil {
		return nil
	}
	t := strings.TrimSpace(*f)
	if t == "" {
		return nil
	}
	return &t
}
