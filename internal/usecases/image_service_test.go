package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-stamp/internal/domain/entities"
	"media-stamp/internal/infrastructure/processor"
	fe "media-stamp/pkg/errors"
)

func TestProcessImage(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	touch(t, src)

	wm := &fakeWatermarker{}
	svc := NewImageService(wm, &fakeNormalizer{}, nil, "logo.png", nil)

	res := svc.ProcessImage(context.Background(), src, "")
	require.False(t, res.Failed(), res.Error)

	sum := sha256.Sum256([]byte("final"))
	assert.Equal(t, filepath.Join(dir, "photo_watermarked.jpg"), res.Intermediate)
	assert.Equal(t, filepath.Join(dir, "photo_watermarked_Mfix.jpg"), res.Output)
	assert.Equal(t, dir, res.Folder)
	assert.Equal(t, "No metadata", res.Before)
	assert.Equal(t, "[primary]\nArtist: Acme Author", res.After)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.SHA256)
	assert.Empty(t, res.Published)
	assert.Equal(t, []string{src + "|logo.png"}, wm.calls)
}

func TestProcessBatchContinuesAfterFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.png")
	touch(t, good)
	text := filepath.Join(dir, "notes.txt")
	touch(t, text)
	missing := filepath.Join(dir, "missing.png")

	svc := NewImageService(&fakeWatermarker{}, &fakeNormalizer{}, nil, "logo.png", nil)
	results := svc.ProcessBatch(context.Background(), []string{text, missing, good}, "custom.png")
	require.Len(t, results, 3)

	assert.Equal(t, "notes.txt is not a supported image file", results[0].Error)
	assert.Equal(t, "not found: "+missing, results[1].Error)
	assert.False(t, results[2].Failed())
	assert.Equal(t, filepath.Join(dir, "good_watermarked_Mfix.png"), results[2].Output)
}

func TestProcessImageStageErrors(t *testing.T) {
	tests := []struct {
		name       string
		watermark  error
		normalizer error
		want       string
	}{
		{
			name:      "watermark decode",
			watermark: fe.ErrDecode("logo.png", nil),
			want:      "could not read logo.png",
		},
		{
			name:       "normalizer encode",
			normalizer: fe.ErrEncode("photo_watermarked_Mfix.jpg", nil),
			want:       "could not write photo_watermarked_Mfix.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := filepath.Join(t.TempDir(), "photo.jpg")
			touch(t, src)

			svc := NewImageService(&fakeWatermarker{err: tt.watermark}, &fakeNormalizer{err: tt.normalizer}, nil, "logo.png", nil)
			res := svc.ProcessImage(context.Background(), src, "")
			assert.Equal(t, tt.want, res.Error)
			assert.Empty(t, res.Output)
		})
	}
}

func TestProcessImagePublishes(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	touch(t, src)

	store := &fakeStorage{}
	svc := NewImageService(&fakeWatermarker{}, &fakeNormalizer{}, store, "logo.png", nil)
	res := svc.ProcessImage(context.Background(), src, "")

	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, "mem://images", res.Published)
	assert.Equal(t, []string{"images/" + res.Output}, store.published)
}

func TestProcessImageCancelled(t *testing.T) {
	src := filepath.Join(t.TempDir(), "photo.jpg")
	touch(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wm := &fakeWatermarker{}
	svc := NewImageService(wm, &fakeNormalizer{}, nil, "logo.png", nil)
	res := svc.ProcessImage(ctx, src, "")

	assert.Equal(t, context.Canceled.Error(), res.Error)
	assert.Empty(t, wm.calls)
}

func TestImagePipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.png")
	logo := filepath.Join(dir, "logo.png")
	require.NoError(t, imaging.Save(imaging.New(64, 48, color.NRGBA{R: 30, G: 60, B: 90, A: 255}), src))
	require.NoError(t, imaging.Save(imaging.New(16, 16, color.NRGBA{R: 255, G: 255, B: 255, A: 255}), logo))

	id := entities.Identity{
		Organization: "Acme Studio",
		Author:       "Acme Author",
		Contact:      "Contact: studio@acme.example",
		ProjectLabel: "Graphic design project",
	}
	svc := NewImageService(
		processor.NewCompositor(processor.DefaultWatermarkOptions(), nil),
		processor.NewNormalizer(id, 95, nil),
		nil, logo, nil,
	)

	res := svc.ProcessImage(context.Background(), src, "")
	require.False(t, res.Failed(), res.Error)

	assert.Equal(t, filepath.Join(dir, "photo_watermarked_Mfix.png"), res.Output)
	assert.Equal(t, "No metadata", res.Before)
	assert.Contains(t, res.After, "Artist: Acme Author")
	assert.Contains(t, res.After, "XPComment: Contact: studio@acme.example")
	assert.Contains(t, res.After, "UserComment: Graphic design project")
	assert.Len(t, res.SHA256, 64)

	img, err := imaging.Open(res.Output)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())
}
