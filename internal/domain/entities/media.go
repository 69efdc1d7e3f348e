package entities

import (
	"path/filepath"

	"media-stamp/pkg/file"
)

type MediaKind string

const (
	KindImage   MediaKind = "image"
	KindVideo   MediaKind = "video"
	KindUnknown MediaKind = "unknown"
)

// MediaAsset is a file on disk. Pipelines never modify an asset; they
// produce a new one at a derived path.
type MediaAsset struct {
	Path string    `json:"path"`
	Kind MediaKind `json:"kind"`
}

func NewMediaAsset(path string) MediaAsset {
	kind := KindUnknown
	switch {
	case file.IsImageFile(path):
		kind = KindImage
	case file.IsVideoFile(path):
		kind = KindVideo
	}
	return MediaAsset{Path: path, Kind: kind}
}

func (a MediaAsset) Dir() string {
	return filepath.Dir(a.Path)
}

func (a MediaAsset) Base() string {
	return filepath.Base(a.Path)
}
