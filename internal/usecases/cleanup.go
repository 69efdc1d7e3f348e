package usecases

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	fe "media-stamp/pkg/errors"
	"media-stamp/pkg/file"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type CleanupService interface {
	// CleanupIntermediates removes watermark intermediates older than maxAge
	// and returns how many files were deleted.
	CleanupIntermediates(maxAge time.Duration) (int, error)
}

type cleanupService struct {
	dirs []string
	now  func() time.Time
	log  *zap.Logger
}

func NewCleanupService(dirs []string, log *zap.Logger) CleanupService {
	if log == nil {
		log = zap.NewNop()
	}
	return &cleanupService{
		dirs: lo.Uniq(lo.Map(dirs, func(d string, _ int) string { return filepath.Clean(d) })),
		now:  time.Now,
		log:  log,
	}
}

func (s *cleanupService) CleanupIntermediates(maxAge time.Duration) (int, error) {
	now := s.now()
	removed := 0
	var firstErr error

	for _, dir := range s.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !file.HasSuffix(path, file.SuffixWatermarked) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			if now.Sub(info.ModTime()) <= maxAge {
				return nil
			}
			if err := os.Remove(path); err != nil {
				s.log.Warn("cannot remove intermediate", zap.String("path", path), zap.Error(err))
				if firstErr == nil {
					firstErr = fe.ErrInternal(err)
				}
				return nil
			}
			removed++
			s.log.Info("removed old intermediate", zap.String("path", path))
			return nil
		})
		if err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fe.ErrInternal(err)
		}
	}
	return removed, firstErr
}
