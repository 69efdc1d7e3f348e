package processor

import (
	"context"

	"media-stamp/internal/domain/entities"
)

// Fixed camouflage preset: a 1% upscale kept to even dimensions, 59.94 fps,
// a slight brightness and saturation lift, and a 1% audio tempo change with a
// resample.
const (
	CamouflageVideoFilter = "scale='2*trunc(iw*1.01/2)':'2*trunc(ih*1.01/2)',fps=59.94,eq=brightness=0.01:saturation=1.01"
	CamouflageAudioFilter = "atempo=1.01,asetrate=44110"
	CamouflageDescription = "This is a camouflaged video."
)

func CamouflageTags(id entities.Identity) []entities.Tag {
	return []entities.Tag{
		{Key: "title", Value: id.Organization},
		{Key: "description", Value: CamouflageDescription},
		{Key: "artist", Value: id.Organization},
		{Key: "copyright", Value: id.Copyright},
	}
}

func CamouflageRequest(inputPath, outputPath string, id entities.Identity) entities.RewriteRequest {
	video := CamouflageVideoFilter
	audio := CamouflageAudioFilter
	return entities.RewriteRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Tags:       CamouflageTags(id),
		Filters:    entities.FilterChain{Video: &video, Audio: &audio},
	}
}

// Camouflage re-encodes inputPath with the fixed preset.
func (r *Rewriter) Camouflage(ctx context.Context, inputPath, outputPath string) (entities.TranscodeResult, error) {
	return r.Rewrite(ctx, CamouflageRequest(inputPath, outputPath, r.identity))
}
