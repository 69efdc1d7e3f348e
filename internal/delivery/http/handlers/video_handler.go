package handlers

import (
	"strings"

	"media-stamp/internal/domain/dto"
	"media-stamp/internal/usecases"
	fe "media-stamp/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type VideoHandler struct {
	videos usecases.VideoService
	log    *zap.Logger
}

func NewVideoHandler(videos usecases.VideoService, log *zap.Logger) *VideoHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &VideoHandler{videos: videos, log: log}
}

// Inspect
//
// @Summary      Show video metadata
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.InspectVideosRequest true "Video paths"
// @Success      200   {object}  dto.InspectVideosResponse
// @Router       /videos/inspect [post]
func (h *VideoHandler) Inspect(c *fiber.Ctx) error {
	var req dto.InspectVideosRequest
	if err := c.BodyParser(&req); err != nil {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("invalid request body"))
	}
	if len(req.Paths) == 0 {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("paths must not be empty"))
	}

	results := h.videos.InspectBatch(c.UserContext(), req.Paths)
	failed := lo.CountBy(results, func(r dto.InspectResult) bool { return r.Error != "" })

	return c.JSON(dto.InspectVideosResponse{
		Status:  usecases.BatchStatus(failed, len(results)),
		Results: results,
	})
}

// Rewrite
//
// @Summary      Edit video metadata
// @Description  Writes <stem>_edited.mp4 with the given tags; filters force a re-encode
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RewriteVideoRequest true "Tags and optional filters"
// @Success      200   {object}  dto.VideoResultsResponse
// @Router       /videos/rewrite [post]
func (h *VideoHandler) Rewrite(c *fiber.Ctx) error {
	var req dto.RewriteVideoRequest
	if err := c.BodyParser(&req); err != nil {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("invalid request body"))
	}
	if strings.TrimSpace(req.Path) == "" {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("path is required"))
	}

	res := h.videos.Rewrite(c.UserContext(), req)
	return c.JSON(dto.VideoResultsResponse{
		Status:  usecases.BatchStatus(lo.Ternary(res.Failed(), 1, 0), 1),
		Results: []dto.VideoResult{res},
	})
}

// Camouflage
//
// @Summary      Camouflage videos
// @Tags         Videos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CamouflageVideosRequest true "Video paths"
// @Success      200   {object}  dto.VideoResultsResponse
// @Router       /videos/camouflage [post]
func (h *VideoHandler) Camouflage(c *fiber.Ctx) error {
	var req dto.CamouflageVideosRequest
	if err := c.BodyParser(&req); err != nil {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("invalid request body"))
	}
	if len(req.Paths) == 0 {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("paths must not be empty"))
	}

	results := h.videos.CamouflageBatch(c.UserContext(), req.Paths)
	failed := lo.CountBy(results, dto.VideoResult.Failed)

	return c.JSON(dto.VideoResultsResponse{
		Status:  usecases.BatchStatus(failed, len(results)),
		Results: results,
	})
}
