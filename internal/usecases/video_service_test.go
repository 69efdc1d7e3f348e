package usecases

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-stamp/internal/domain/dto"
	"media-stamp/internal/domain/entities"
)

func strPtr(s string) *string { return &s }

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]string
		want []entities.Tag
	}{
		{name: "nil", in: nil, want: []entities.Tag{}},
		{
			name: "trims and sorts",
			in:   map[string]string{" title ": " Summer ", "artist": "Acme"},
			want: []entities.Tag{{Key: "artist", Value: "Acme"}, {Key: "title", Value: "Summer"}},
		},
		{
			name: "drops blanks",
			in:   map[string]string{"title": "   ", "": "x", "comment": "ok"},
			want: []entities.Tag{{Key: "comment", Value: "ok"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestNormalizeFilter(t *testing.T) {
	assert.Nil(t, NormalizeFilter(nil))
	assert.Nil(t, NormalizeFilter(strPtr("  ")))
	assert.Equal(t, "hflip", *NormalizeFilter(strPtr(" hflip ")))
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.MP4")
	touch(t, clip)

	prober := &fakeProber{tags: entities.VideoTagSet{"title": "B", "format_name": "mp4"}}
	svc := NewVideoService(prober, &fakeRewriter{}, nil, nil)

	res := svc.Inspect(context.Background(), clip)
	require.Empty(t, res.Error)
	assert.Equal(t, []string{"format_name", "title"}, res.Keys)
	assert.Equal(t, "B", res.Tags["title"])
}

func TestInspectBatchGatesAndErrors(t *testing.T) {
	dir := t.TempDir()
	mov := filepath.Join(dir, "clip.mov")
	touch(t, mov)
	missing := filepath.Join(dir, "gone.mp4")
	broken := filepath.Join(dir, "broken.mp4")
	touch(t, broken)

	svc := NewVideoService(&fakeProber{err: errToolFailed}, &fakeRewriter{}, nil, nil)
	results := svc.InspectBatch(context.Background(), []string{mov, missing, broken})
	require.Len(t, results, 3)

	assert.Equal(t, "clip.mov is not a valid MP4 file", results[0].Error)
	assert.Equal(t, "not found: "+missing, results[1].Error)
	assert.Equal(t, "Invalid data found when processing input", results[2].Error)
}

func TestRewrite(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.mp4")
	touch(t, clip)

	rw := &fakeRewriter{}
	store := &fakeStorage{}
	svc := NewVideoService(&fakeProber{}, rw, store, nil)

	res := svc.Rewrite(context.Background(), dto.RewriteVideoRequest{
		Path:        clip,
		Tags:        map[string]string{"title": " New ", "comment": ""},
		VideoFilter: strPtr(" "),
		AudioFilter: strPtr("atempo=1.01"),
	})
	require.Empty(t, res.Error)

	require.Len(t, rw.requests, 1)
	req := rw.requests[0]
	assert.Equal(t, filepath.Join(dir, "clip_edited.mp4"), req.OutputPath)
	assert.Equal(t, []entities.Tag{{Key: "title", Value: "New"}}, req.Tags)
	assert.Nil(t, req.Filters.Video)
	require.NotNil(t, req.Filters.Audio)
	assert.Equal(t, "atempo=1.01", *req.Filters.Audio)

	assert.Equal(t, req.OutputPath, res.Output)
	assert.Equal(t, dir, res.Folder)
	assert.True(t, res.Reencoded)
	assert.Equal(t, "mem://videos", res.Published)
}

func TestRewriteToolFailure(t *testing.T) {
	clip := filepath.Join(t.TempDir(), "clip.mp4")
	touch(t, clip)

	svc := NewVideoService(&fakeProber{}, &fakeRewriter{err: errToolFailed}, nil, nil)
	res := svc.Rewrite(context.Background(), dto.RewriteVideoRequest{Path: clip})

	assert.Equal(t, "Invalid data found when processing input", res.Error)
	assert.Empty(t, res.Output)
}

func TestCamouflageBatch(t *testing.T) {
	dir := t.TempDir()
	clip := filepath.Join(dir, "clip.mp4")
	touch(t, clip)
	other := filepath.Join(dir, "notes.txt")
	touch(t, other)

	rw := &fakeRewriter{}
	svc := NewVideoService(&fakeProber{}, rw, nil, nil)
	results := svc.CamouflageBatch(context.Background(), []string{clip, other})
	require.Len(t, results, 2)

	assert.Equal(t, "clip.mp4: Video saved successfully.", results[0].Message)
	assert.Equal(t, filepath.Join(dir, "clip_camuflage.mp4"), results[0].Output)
	assert.Equal(t, "notes.txt: notes.txt is not a valid MP4 file", results[1].Error)
	assert.Len(t, rw.requests, 1)
}
