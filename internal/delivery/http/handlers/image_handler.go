package handlers

import (
	"media-stamp/internal/domain/dto"
	"media-stamp/internal/usecases"
	fe "media-stamp/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type ImageHandler struct {
	images usecases.ImageService
	log    *zap.Logger
}

func NewImageHandler(images usecases.ImageService, log *zap.Logger) *ImageHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageHandler{images: images, log: log}
}

// ProcessImages
//
// @Summary      Watermark and normalize images
// @Description  Runs the watermark and metadata pipeline on each path and reports every file separately
// @Tags         Images
// @Accept       json
// @Produce      json
// @Param        body  body      dto.ProcessImagesRequest true "Image paths"
// @Success      200   {object}  dto.ProcessImagesResponse
// @Router       /images/process [post]
func (h *ImageHandler) ProcessImages(c *fiber.Ctx) error {
	var req dto.ProcessImagesRequest
	if err := c.BodyParser(&req); err != nil {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("invalid request body"))
	}
	if len(req.Paths) == 0 {
		return fe.HandleError(c, h.log, fe.ErrInvalidInput("paths must not be empty"))
	}

	results := h.images.ProcessBatch(c.UserContext(), req.Paths, req.Watermark)
	failed := lo.CountBy(results, dto.ImageResult.Failed)

	return c.JSON(dto.ProcessImagesResponse{
		Status:  usecases.BatchStatus(failed, len(results)),
		Results: results,
	})
}
