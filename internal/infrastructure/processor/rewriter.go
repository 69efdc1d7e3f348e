package processor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"media-stamp/internal/domain/entities"
	fe "media-stamp/pkg/errors"
)

const RewriteSuccessMessage = "Metadata and content updated successfully."

// Rewriter produces a new video with replaced metadata and optional filters.
type Rewriter struct {
	ffmpeg   string
	runner   CommandRunner
	identity entities.Identity
	log      *zap.Logger
}

func NewRewriter(ffmpegPath string, runner CommandRunner, identity entities.Identity, log *zap.Logger) *Rewriter {
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Rewriter{ffmpeg: ffmpegPath, runner: runner, identity: identity, log: log}
}

// BuildRewriteArgs returns the ffmpeg arguments for req. Streams are copied
// unless a filter is present, in which case video and audio are re-encoded.
func BuildRewriteArgs(req entities.RewriteRequest, handlerName string) []string {
	args := []string{"-i", req.InputPath}
	if req.Filters.Video != nil {
		args = append(args, "-vf", *req.Filters.Video)
	}
	if req.Filters.Audio != nil {
		args = append(args, "-af", *req.Filters.Audio)
	}
	for _, tag := range req.Tags {
		args = append(args, "-metadata", tag.Key+"="+tag.Value)
	}
	args = append(args,
		"-metadata:s:v:0", "handler_name="+handlerName,
		"-metadata:s:a:0", "handler_name="+handlerName,
	)
	if req.Filters.Present() {
		args = append(args, "-c:v", "libx264", "-c:a", "aac")
	} else {
		args = append(args, "-codec", "copy")
	}
	// -y: outputs are derived paths, so rerunning a batch replaces them.
	return append(args, "-y", req.OutputPath)
}

// Rewrite runs ffmpeg for req. The caller's tags never replace the stream
// handler names.
func (r *Rewriter) Rewrite(ctx context.Context, req entities.RewriteRequest) (entities.TranscodeResult, error) {
	if err := validateRewrite(req); err != nil {
		return entities.TranscodeResult{}, err
	}

	args := BuildRewriteArgs(req, r.identity.HandlerName())
	r.log.Debug("running ffmpeg", zap.String("cmd", r.ffmpeg), zap.Strings("args", args))

	res, err := r.runner.Run(ctx, r.ffmpeg, args...)
	if err != nil || res.ExitCode != 0 {
		return entities.TranscodeResult{Args: args}, commandError(ctx, res, err)
	}

	return entities.TranscodeResult{
		OutputPath: req.OutputPath,
		Message:    RewriteSuccessMessage,
		Reencoded:  req.Filters.Present(),
		Args:       args,
	}, nil
}

func validateRewrite(req entities.RewriteRequest) error {
	if req.InputPath == "" || req.OutputPath == "" {
		return fe.ErrInvalidInput("input and output paths are required")
	}
	if samePath(req.InputPath, req.OutputPath) {
		return fe.ErrInvalidInput("output path must differ from input path")
	}
	for _, tag := range req.Tags {
		if tag.Key == "" || strings.Contains(tag.Key, "=") {
			return fe.ErrInvalidInput(fmt.Sprintf("invalid metadata key %q", tag.Key))
		}
	}
	return nil
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
