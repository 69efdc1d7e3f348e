package storage

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"media-stamp/internal/domain/repositories"
	"media-stamp/pkg/file"
)

var _ repositories.StorageStrategy = (*LocalStorage)(nil)

// LocalStorage copies finished outputs into an export directory.
type LocalStorage struct {
	BasePath string
}

func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{BasePath: basePath}
}

func (l *LocalStorage) Publish(ctx context.Context, localPath, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath := filepath.Join(l.BasePath, folder, filepath.Base(localPath))
	if err := file.CopyFile(localPath, fullPath); err != nil {
		return "", errors.Wrapf(err, "copy %s to export dir", localPath)
	}
	return fullPath, nil
}
