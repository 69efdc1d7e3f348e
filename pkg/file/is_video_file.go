package file

import (
	"path/filepath"
	"strings"
)

func IsVideoFile(filePath string) bool {
	ext := strings.ToLower(filepath.Ext(filePath))
	videoExtensions := []string{".mp4", ".mov", ".mkv", ".avi"}
	for _, v := range videoExtensions {
		if ext == v {
			return true
		}
	}
	return false
}

// IsMP4File is the gate for the video pipelines, which only accept MP4 containers.
func IsMP4File(filePath string) bool {
	return strings.EqualFold(filepath.Ext(filePath), ".mp4")
}
