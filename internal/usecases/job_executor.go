package usecases

import (
	"context"
	"time"

	"media-stamp/internal/domain/dto"
	"media-stamp/internal/infrastructure/queue"
	consts "media-stamp/pkg/constants"

	"github.com/samber/lo"
)

// JobExecutor runs a queued job to completion. It is shared by the
// in-process worker pool and the redis worker.
type JobExecutor interface {
	Execute(ctx context.Context, job queue.Job) queue.ProcessedJob
}

type jobExecutor struct {
	images ImageService
	videos VideoService
	now    func() time.Time
}

func NewJobExecutor(images ImageService, videos VideoService) JobExecutor {
	return &jobExecutor{
		images: images,
		videos: videos,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (e *jobExecutor) Execute(ctx context.Context, job queue.Job) queue.ProcessedJob {
	p := job.Payload
	processed := queue.ProcessedJob{JobID: job.ID}

	var failed, total int
	switch job.Type {
	case queue.JobProcessImages:
		res := e.images.ProcessBatch(ctx, p.Paths, p.Watermark)
		processed.Result.Images = res
		failed, total = lo.CountBy(res, dto.ImageResult.Failed), len(res)
	case queue.JobInspectVideos:
		res := e.videos.InspectBatch(ctx, p.Paths)
		processed.Result.Inspections = res
		failed, total = lo.CountBy(res, func(r dto.InspectResult) bool { return r.Error != "" }), len(res)
	case queue.JobRewriteVideo:
		res := e.videos.Rewrite(ctx, dto.RewriteVideoRequest{
			Path:        p.Path,
			Tags:        p.Tags,
			VideoFilter: p.VideoFilter,
			AudioFilter: p.AudioFilter,
		})
		processed.Result.Videos = []dto.VideoResult{res}
		failed, total = lo.Ternary(res.Failed(), 1, 0), 1
	case queue.JobCamouflageVideos:
		res := e.videos.CamouflageBatch(ctx, p.Paths)
		processed.Result.Videos = res
		failed, total = lo.CountBy(res, dto.VideoResult.Failed), len(res)
	default:
		processed.Status = consts.StatusFailed
		processed.Error = "unknown job type: " + string(job.Type)
		processed.FinishedAt = e.now()
		return processed
	}

	processed.Status = BatchStatus(failed, total)
	if err := ctx.Err(); err != nil {
		processed.Status = consts.StatusCancelled
		processed.Error = err.Error()
	}
	processed.FinishedAt = e.now()
	return processed
}

// BatchStatus summarizes per-file outcomes.
func BatchStatus(failed, total int) string {
	switch {
	case failed == 0:
		return consts.StatusCompleted
	case failed < total:
		return consts.StatusPartial
	default:
		return consts.StatusFailed
	}
}
