package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-stamp/internal/bootstrap"
	"media-stamp/internal/domain/dto"
)

type stubImages struct{}

func (stubImages) ProcessImage(ctx context.Context, path, watermarkPath string) dto.ImageResult {
	if path == "bad.txt" {
		return dto.ImageResult{Source: path, Error: "bad.txt is not a supported image file"}
	}
	return dto.ImageResult{Source: path, Output: "a_watermarked_Mfix.png", SHA256: "abc", Before: "No metadata", After: "[primary]\nArtist: Acme"}
}

func (s stubImages) ProcessBatch(ctx context.Context, paths []string, watermarkPath string) []dto.ImageResult {
	var out []dto.ImageResult
	for _, p := range paths {
		out = append(out, s.ProcessImage(ctx, p, watermarkPath))
	}
	return out
}

type stubVideos struct {
	rewrites []dto.RewriteVideoRequest
}

func (s *stubVideos) Inspect(ctx context.Context, path string) dto.InspectResult {
	return dto.InspectResult{Path: path, Tags: map[string]string{"title": "A", "encoder": "x"}, Keys: []string{"encoder", "title"}}
}

func (s *stubVideos) InspectBatch(ctx context.Context, paths []string) []dto.InspectResult {
	var out []dto.InspectResult
	for _, p := range paths {
		out = append(out, s.Inspect(ctx, p))
	}
	return out
}

func (s *stubVideos) Rewrite(ctx context.Context, req dto.RewriteVideoRequest) dto.VideoResult {
	s.rewrites = append(s.rewrites, req)
	return dto.VideoResult{Source: req.Path, Output: "clip_edited.mp4", Message: "Video saved successfully."}
}

func (s *stubVideos) Camouflage(ctx context.Context, path string) dto.VideoResult {
	return dto.VideoResult{Source: path, Error: path + ": not a valid MP4 file"}
}

func (s *stubVideos) CamouflageBatch(ctx context.Context, paths []string) []dto.VideoResult {
	var out []dto.VideoResult
	for _, p := range paths {
		out = append(out, s.Camouflage(ctx, p))
	}
	return out
}

func newServices() (*bootstrap.Services, *stubVideos) {
	videos := &stubVideos{}
	return &bootstrap.Services{Images: stubImages{}, Videos: videos}, videos
}

func TestRunUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"resize", "a.png"}},
		{name: "no files", args: []string{"image"}},
		{name: "bad tag", args: []string{"edit", "-tag", "novalue", "clip.mp4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newServices()
			var stdout, stderr bytes.Buffer
			assert.Equal(t, 2, run(context.Background(), tt.args, svc, &stdout, &stderr))
			assert.NotEmpty(t, stderr.String())
		})
	}
}

func TestRunImage(t *testing.T) {
	svc, _ := newServices()
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"image", "a.png", "bad.txt"}, svc, &stdout, &stderr)
	assert.Equal(t, 0, code)
	out := stdout.String()
	assert.Contains(t, out, "OK   a.png -> a_watermarked_Mfix.png (sha256 abc)")
	assert.Contains(t, out, "       Artist: Acme")
	assert.Contains(t, out, "FAIL bad.txt: bad.txt is not a supported image file")
}

func TestRunProbe(t *testing.T) {
	svc, _ := newServices()
	var stdout, stderr bytes.Buffer

	require.Equal(t, 0, run(context.Background(), []string{"probe", "clip.mp4"}, svc, &stdout, &stderr))
	assert.Equal(t, "clip.mp4\n  encoder: x\n  title: A\n", stdout.String())
}

func TestRunEdit(t *testing.T) {
	svc, videos := newServices()
	var stdout, stderr bytes.Buffer

	code := run(context.Background(), []string{"edit", "-tag", "title=New", "-tag", "comment=a=b", "-af", "atempo=1.01", "clip.mp4"}, svc, &stdout, &stderr)
	require.Equal(t, 0, code)
	require.Len(t, videos.rewrites, 1)

	req := videos.rewrites[0]
	assert.Equal(t, "clip.mp4", req.Path)
	assert.Equal(t, map[string]string{"title": "New", "comment": "a=b"}, req.Tags)
	assert.Nil(t, req.VideoFilter)
	require.NotNil(t, req.AudioFilter)
	assert.Equal(t, "atempo=1.01", *req.AudioFilter)
	assert.Equal(t, "OK   clip.mp4 -> clip_edited.mp4: Video saved successfully.\n", stdout.String())
}

func TestRunCamouflageReportsFailuresWithoutFailingTheRun(t *testing.T) {
	svc, _ := newServices()
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 0, run(context.Background(), []string{"camouflage", "a.mov"}, svc, &stdout, &stderr))
	assert.Equal(t, "FAIL a.mov: a.mov: not a valid MP4 file\n", stdout.String())
}
