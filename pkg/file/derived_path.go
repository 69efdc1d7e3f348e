package file

import (
	"path/filepath"
	"strings"
)

const (
	SuffixWatermarked = "_watermarked"
	SuffixMetadataFix = "_Mfix"
	SuffixEdited      = "_edited"
	SuffixCamouflage  = "_camuflage"
)

// DerivedPath returns <dir>/<stem><suffix><ext> for path.
func DerivedPath(path, suffix string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + suffix + ext
}

// HasSuffix reports whether the stem of path ends with suffix.
func HasSuffix(path, suffix string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(strings.TrimSuffix(base, filepath.Ext(base)), suffix)
}
