package usecases

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"media-stamp/internal/domain/entities"
	fe "media-stamp/pkg/errors"
	"media-stamp/pkg/file"
)

type fakeWatermarker struct {
	err   error
	calls []string
}

func (f *fakeWatermarker) ApplyWatermark(sourcePath, watermarkPath string) (string, error) {
	f.calls = append(f.calls, sourcePath+"|"+watermarkPath)
	if f.err != nil {
		return "", f.err
	}
	out := file.DerivedPath(sourcePath, file.SuffixWatermarked)
	return out, os.WriteFile(out, []byte("watermarked"), 0o644)
}

type fakeNormalizer struct {
	err error
}

func (f *fakeNormalizer) NormalizeMetadata(imagePath string) (string, entities.MetadataRecord, entities.MetadataRecord, error) {
	if f.err != nil {
		return "", nil, nil, f.err
	}
	out := file.DerivedPath(imagePath, file.SuffixMetadataFix)
	if err := os.WriteFile(out, []byte("final"), 0o644); err != nil {
		return "", nil, nil, err
	}
	after := entities.EmptyRecord()
	after.Set(entities.GroupPrimary, "Artist", entities.StringField("Acme Author"))
	return out, entities.EmptyRecord(), after, nil
}

type fakeProber struct {
	tags entities.VideoTagSet
	err  error
}

func (f *fakeProber) Probe(ctx context.Context, path string) (entities.VideoTagSet, error) {
	return f.tags, f.err
}

type fakeRewriter struct {
	mu       sync.Mutex
	requests []entities.RewriteRequest
	err      error
}

func (f *fakeRewriter) Rewrite(ctx context.Context, req entities.RewriteRequest) (entities.TranscodeResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return entities.TranscodeResult{}, f.err
	}
	return entities.TranscodeResult{
		OutputPath: req.OutputPath,
		Message:    "Video saved successfully.",
		Reencoded:  req.Filters.Present(),
	}, nil
}

func (f *fakeRewriter) Camouflage(ctx context.Context, inputPath, outputPath string) (entities.TranscodeResult, error) {
	return f.Rewrite(ctx, entities.RewriteRequest{InputPath: inputPath, OutputPath: outputPath})
}

type fakeStorage struct {
	published []string
	err       error
}

func (f *fakeStorage) Publish(ctx context.Context, localPath, folder string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.published = append(f.published, folder+"/"+localPath)
	return "mem://" + folder, nil
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
}

var errToolFailed = fe.ErrToolFailed("Invalid data found when processing input", nil)
